package main

import (
	"dexpilot"
	"dexpilot/app"
	"dexpilot/bot"
	"dexpilot/config"
	"dexpilot/dex"
	"dexpilot/dex/pkg/txlistener"
	"dexpilot/internal/db"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

func main() {

	conf, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	level, err := conf.LogLevel()
	if err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	ch := make(chan string, 16)

	botConf, err := conf.BotConfig()
	if err != nil {
		panic(err)
	}

	teleBot, err := bot.NewTeleBot(botConf)
	if err != nil {
		panic(err)
	}

	stg, err := db.NewStorage(conf.MysqlConfig(), conf.RedisConfig())
	if err != nil {
		panic(err)
	}

	client, err := ethclient.Dial(conf.RpcUrl())
	if err != nil {
		panic(err)
	}

	tl := txlistener.NewTxListener(client)
	sg := subgraph.NewClient(conf.SubgraphEndpoint(), nil)

	routerConf, err := conf.RouterConfig(teleBot)
	if err != nil {
		panic(err)
	}

	router, err := dex.NewRouter(client, routerConf, sg, tl)
	if err != nil {
		panic(err)
	}

	routerClient, err := router.Client(conf.Chain.Router)
	if err != nil {
		panic(err)
	}

	watched := make([]dexpilot.WatchedPair, 0, len(conf.Chain.WatchedPairs))
	for _, w := range conf.Chain.WatchedPairs {
		watched = append(watched, dexpilot.WatchedPair{
			TokenA: common.HexToAddress(w.TokenA),
			TokenB: common.HexToAddress(w.TokenB),
		})
	}

	pilot := dexpilot.NewDexPilot(dexpilot.DexPilotConfig{
		Storage:      stg,
		Pairs:        sg,
		Trader:       router,
		Receipts:     routerClient,
		Channel:      ch,
		WatchedPairs: watched,
	})
	pilot.Run()

	go func() {
		app.Run(conf.App.Port, conf.App.JwtKey, conf.App.Passkey, app.Services{
			Users:       stg,
			Pairs:       sg,
			Snapshots:   stg,
			Quoter:      router,
			Trader:      pilot,
			Submissions: stg,
			Decoder:     routerClient,
		})
	}()

	teleBot.Run(ch, conf.App.Port, conf.App.Passkey)
}
