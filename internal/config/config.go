// Package config loads process settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// AllowedOrigins restricts websocket upgrades; empty allows any origin
	AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
}

// DiscordConfig is optional; the bot only starts when Token is set
type DiscordConfig struct {
	Token         string `env:"DISCORD_TOKEN"`
	ApplicationID string `env:"APPLICATION_ID"`
	GuildID       string `env:"GUILD_ID"`
}

type LedgerConfig struct {
	MaxTxRetries  int           `env:"LEDGER_MAX_TX_RETRIES" envDefault:"5"`
	WatchInterval time.Duration `env:"DUEL_WATCH_INTERVAL" envDefault:"30s"`
	// MessageSeed fixes the flavor text generator; 0 seeds from the clock
	MessageSeed int64 `env:"MESSAGE_SEED" envDefault:"0"`
}

type AppConfig struct {
	Redis   RedisConfig
	HTTP    HTTPConfig
	Log     LogConfig
	Discord DiscordConfig
	Ledger  LedgerConfig
}

func LoadRedis() (RedisConfig, error) {
	var cfg RedisConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadHTTP() (HTTPConfig, error) {
	var cfg HTTPConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadDiscord() (DiscordConfig, error) {
	var cfg DiscordConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadLedger() (LedgerConfig, error) {
	var cfg LedgerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadApp() (AppConfig, error) {
	redisCfg, err := LoadRedis()
	if err != nil {
		return AppConfig{}, err
	}
	httpCfg, err := LoadHTTP()
	if err != nil {
		return AppConfig{}, err
	}
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	discordCfg, err := LoadDiscord()
	if err != nil {
		return AppConfig{}, err
	}
	ledgerCfg, err := LoadLedger()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Redis:   redisCfg,
		HTTP:    httpCfg,
		Log:     logCfg,
		Discord: discordCfg,
		Ledger:  ledgerCfg,
	}, nil
}
