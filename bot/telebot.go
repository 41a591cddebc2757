package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TeleBot struct {
	bot     *tgbotapi.BotAPI
	chatId  int64
	updates tgbotapi.UpdatesChannel
}

type TeleBotConfig struct {
	Token  string
	ChatId int64
}

func NewTeleBot(conf *TeleBotConfig) (*TeleBot, error) {

	bot, err := tgbotapi.NewBotAPI(conf.Token)
	if err != nil {
		return nil, err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	return &TeleBot{
		bot:     bot,
		chatId:  conf.ChatId,
		updates: updates,
	}, nil
}

// Run forwards every message pushed to ch to the chat and serves the
// command loop. Blocks, call from its own goroutine or as the final step
// of startup.
func (t TeleBot) Run(ch chan string, port int, passkey string) {
	t.SendMessage("LAUNCHED SUCCESSFULLY")

	go func() {
		t.communicate(ch, port, passkey)
	}()

	for true {
		msg := <-ch
		t.SendMessage(msg)
		log.Println(msg)
	}
}

// InitKey prompts the chat for the wallet passphrase at startup.
func (t TeleBot) InitKey(msg error) string {

	if msg == nil {
		t.SendMessage("Enter decrypt key for wallet")
	} else {
		t.SendMessage(msg.Error())
	}
	update := <-t.updates

	return update.Message.Text
}

func (t TeleBot) SendMessage(msg string) {
	t.bot.Send(tgbotapi.NewMessage(t.chatId, msg))
}

func (t TeleBot) communicate(ch chan string, port int, passkey string) {

	for update := range t.updates {
		if update.Message != nil {
			txt := update.Message.Text
			if txt == "" || txt[0] != '/' {
				continue
			}

			switch txt {
			case "/help":
				ch <- `
				query API list
				/pairs/{token0}/{token1}
				/pairs/{token0}/{token1}/history
				/quote/swap/{token0}/{token1}/{amount}
				/quote/counter/{token0}/{token1}/{amount}
				/submissions
				/submissions/{txhash}
				/farm/{poolId}/pending
				`
			default:
				rtn, err := httpsend(fmt.Sprintf("http://localhost:%d%s", port, txt), passkey)
				if err != nil {
					ch <- err.Error()
				} else {
					ch <- rtn
				}
			}

		}
	}
}

func httpsend(url string, passkey string) (string, error) {

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", passkey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var jsonData interface{}

	err = json.Unmarshal(body, &jsonData)
	if err != nil {
		return "", err
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)

	encoder.SetIndent("", "\t")
	err = encoder.Encode(jsonData)
	if err != nil {
		return "", err
	}

	return buffer.String(), nil
}
