package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	JWTExpiryH    int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
	GatewayURL    string `env:"GATEWAY_URL" envDefault:"http://mock-gateway:8081"`
	InboundSecret string `env:"INBOUND_WEBHOOK_SECRET,required"`
	Port          int    `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv        string `env:"APP_ENV" envDefault:"production"`

	// MaxTransferAmount caps every single deposit, withdrawal, borrow, or
	// repayment. It must stay below 2^63/100 so collateral arithmetic on
	// int64 cannot overflow.
	MaxTransferAmount int64 `env:"MAX_TRANSFER_AMOUNT" envDefault:"1000000000000"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
