package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"nftclicks"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"5m"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Auth struct {
		JWTSecret     string        `env:"JWT_SECRET,required"`
		TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
		AdminEmail    string        `env:"ADMIN_EMAIL,required"`
		AdminPassword string        `env:"ADMIN_PASSWORD,required"`
	}

	Gateway struct {
		WebhookSecret string `env:"GATEWAY_WEBHOOK_SECRET,required"`
	}

	// Tier prices in major currency units, matched against gateway amounts.
	Pricing struct {
		User    int64 `env:"PRICE_USER" envDefault:"30"`
		Leader  int64 `env:"PRICE_LEADER" envDefault:"60"`
		Premium int64 `env:"PRICE_PREMIUM" envDefault:"1999"`
	}

	Quota struct {
		Standard    int64 `env:"UPLOAD_LIMIT_STANDARD" envDefault:"5"`
		Premium     int64 `env:"UPLOAD_LIMIT_PREMIUM" envDefault:"15"`
		PremiumBump int64 `env:"UPLOAD_LIMIT_PREMIUM_BUMP" envDefault:"10"`
	}

	Withdrawal struct {
		Minimum int64 `env:"MIN_WITHDRAWAL" envDefault:"2"`
	}
}

func Load() *Config {
	// .env is optional, production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// GetDSN builds the Postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User,
		c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode)
}
