package config

import (
	"context"
	"time"
)

type HTTPConfig struct {
	Addr            string        `env:"DOCCHAT_HTTP_ADDR" envDefault:":8080"`
	MaxUploadBytes  int64         `env:"DOCCHAT_HTTP_MAX_UPLOAD_BYTES" envDefault:"20971520"`
	ShutdownTimeout time.Duration `env:"DOCCHAT_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func NewHTTPConfig(ctx context.Context) *HTTPConfig {
	return mustParse[HTTPConfig](ctx, "HTTP")
}
