package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds process-wide configuration loaded from environment variables.
// The SMTP settings live with the mailer, which parses its own env block.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR"        envDefault:":8080"`
	PublicBaseURL  string        `env:"PUBLIC_BASE_URL"  envDefault:"http://localhost:8080"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDatabase  string        `env:"MONGO_DATABASE"   envDefault:"phonebook"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenExpiresIn time.Duration `env:"TOKEN_EXPIRES_IN" envDefault:"1h"`
	ContactsFile   string        `env:"CONTACTS_FILE"    envDefault:"data/contacts.json"`
	AvatarDir      string        `env:"AVATAR_DIR"       envDefault:"public/avatars"`
	TempDir        string        `env:"TEMP_DIR"         envDefault:"tmp"`
}

// New creates a Config instance from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks that the settings without safe defaults are present.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}

	return nil
}
