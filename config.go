package share

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// AppConfig is the environment backed implementation of Config.
type AppConfig struct {
	SigningKey      string   `env:"JWT_SECRET"`
	SigningMethod   string   `env:"JWT_SIGNING_METHOD" envDefault:"HS256"`
	TokenExpiration int      `env:"TOKEN_EXPIRATION_HOURS" envDefault:"24"`
	ContextKey      string   `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenLookup     string   `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer          string   `env:"AUTH_ISSUER"`
	Audience        []string `env:"AUTH_AUDIENCE"`
	DatabaseDSN     string   `env:"DATABASE_DSN" envDefault:"file::memory:?cache=shared"`
	HTTPAddr        string   `env:"HTTP_ADDR" envDefault:":8572"`
	Debug           bool     `env:"DEBUG"`
}

// Verify interface compliance
var _ Config = (*AppConfig)(nil)

// LoadConfig reads configuration from the environment. A missing signing
// key is an error so a misconfigured process fails at startup rather than
// on its first login.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}

	if cfg.SigningKey == "" {
		return nil, ErrSigningKeyMissing
	}

	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c *AppConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *AppConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *AppConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *AppConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetAudience() []string {
	return c.Audience
}
