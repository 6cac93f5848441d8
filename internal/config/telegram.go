package config

import "context"

type TelegramConfig struct {
	Enabled bool   `env:"DOCCHAT_TELEGRAM_ENABLED" envDefault:"false"`
	Token   string `env:"DOCCHAT_TELEGRAM_TOKEN" secret:"true"`
	OwnerID int64  `env:"DOCCHAT_TELEGRAM_OWNER_ID"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	return mustParse[TelegramConfig](ctx, "telegram")
}

func (c TelegramConfig) GetTelegramToken() string  { return c.Token }
func (c TelegramConfig) GetTelegramOwnerID() int64 { return c.OwnerID }
