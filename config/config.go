package config

import (
	_ "embed"
	"math/big"
	"strconv"

	"dexpilot/bot"
	"dexpilot/dex"
	"dexpilot/internal/db"
	"dexpilot/internal/util"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configByte []byte

type Config struct {
	Log string `yaml:"log"`
	App struct {
		Port    int    `yaml:"port"`
		JwtKey  string `yaml:"jwtkey"`
		Passkey string `yaml:"passkey"`
	} `yaml:"app"`
	Telegram struct {
		ChatId string `yaml:"chatId"`
		Token  string `yaml:"token"`
	} `yaml:"telegram"`

	Chain struct {
		RpcUrl          string `yaml:"rpcUrl"`
		PrivateKey      string `yaml:"privateKey"` // AES encrypted hex
		KeySalt         string `yaml:"keySalt"`
		Router          string `yaml:"router"`
		Chef            string `yaml:"chef"`
		DefaultGasLimit int64  `yaml:"defaultGasLimit"`
		Contracts       []struct {
			Address string `yaml:"address"`
			Abipath string `yaml:"abipath"`
		} `yaml:"contracts"`
		WatchedPairs []struct {
			TokenA string `yaml:"tokenA"`
			TokenB string `yaml:"tokenB"`
		} `yaml:"watchedPairs"`
	} `yaml:"chain"`

	Subgraph struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"subgraph"`

	Db struct {
		User     string `yaml:"user"`
		Password string `yaml:"pwd"`
		IP       string `yaml:"ip"`
		Port     string `yaml:"port"`
		Scheme   string `yaml:"scheme"`
	} `yaml:"db"`

	Redis struct {
		Password string `yaml:"pwd"`
		IP       string `yaml:"ip"`
		Port     string `yaml:"port"`
		Db       int    `yaml:"db"`
	} `yaml:"redis"`
}

func NewConfig() (*Config, error) {

	var ConfigInfo Config = Config{}

	err := yaml.Unmarshal(configByte, &ConfigInfo)
	if err != nil {
		return nil, err
	}

	decode(&ConfigInfo)

	return &ConfigInfo, nil
}

func (c Config) LogLevel() (zerolog.Level, error) {

	level, err := zerolog.ParseLevel(c.Log)
	if err != nil {
		return zerolog.InfoLevel, err
	}

	return level, nil
}

func (c Config) BotConfig() (*bot.TeleBotConfig, error) {

	chatId, err := strconv.ParseInt(c.Telegram.ChatId, 10, 64)
	if err != nil {
		return nil, err
	}

	return &bot.TeleBotConfig{
		Token:  c.Telegram.Token,
		ChatId: chatId,
	}, nil
}

func (c Config) MysqlConfig() *db.MysqlConfig {
	return db.NewMysqlConfig(c.Db.User, c.Db.Password, c.Db.IP, c.Db.Port, c.Db.Scheme)
}

func (c Config) RedisConfig() *db.RedisConfig {
	return db.NewRedisConfig(c.Redis.Password, c.Redis.IP, c.Redis.Port, c.Redis.Db)
}

func (c Config) SubgraphEndpoint() string {
	return c.Subgraph.Endpoint
}

func (c Config) RpcUrl() string {
	return c.Chain.RpcUrl
}

// KeyPasser supplies the wallet passphrase, re-prompting on a failed attempt.
type KeyPasser interface {
	InitKey(err error) string
}

// RouterConfig decrypts the wallet key with a passphrase from the KeyPasser
// and assembles the on-chain deployment config. A wrong passphrase still
// decrypts to garbage under CFB, so the candidate is only accepted once it
// parses as a secp256k1 key; until then the KeyPasser is asked again with
// the parse error.
func (c Config) RouterConfig(keyPasser KeyPasser) (*dex.Config, error) {

	var pk string
	var err error

	for pk == "" || err != nil {
		passphrase := keyPasser.InitKey(err)
		var key []byte
		key, err = util.DeriveKey(passphrase, []byte(c.Chain.KeySalt))
		if err != nil {
			return nil, err
		}
		pk, err = util.Decrypt(key, c.Chain.PrivateKey)
		if err == nil {
			_, err = crypto.HexToECDSA(pk)
		}
	}

	contracts := make([]dex.ContractConfig, 0, len(c.Chain.Contracts))
	for _, cc := range c.Chain.Contracts {
		contracts = append(contracts, dex.ContractConfig{
			Address: cc.Address,
			Abipath: cc.Abipath,
		})
	}

	var defaultGasLimit *big.Int
	if c.Chain.DefaultGasLimit > 0 {
		defaultGasLimit = big.NewInt(c.Chain.DefaultGasLimit)
	}

	return dex.NewConfig(pk, c.Chain.Router, c.Chain.Chef, defaultGasLimit, contracts), nil
}

func decode(conf *Config) {
	util.Decode(&conf.Telegram.ChatId)
	util.Decode(&conf.Telegram.Token)
	util.Decode(&conf.App.JwtKey)
	util.Decode(&conf.App.Passkey)
}
