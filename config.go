package auth

import (
	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// MinSigningKeyLength is the minimum accepted signing secret size; HS256
// wants at least 32 bytes of entropy.
const MinSigningKeyLength = 32

// EnvConfig is the environment-sourced process configuration. It is loaded
// once at startup and never mutated, so unsynchronized concurrent reads
// are safe.
type EnvConfig struct {
	SigningKey      string   `env:"AUTH_SIGNING_KEY"`
	Issuer          string   `env:"AUTH_ISSUER" envDefault:"secureapi"`
	Audience        []string `env:"AUTH_AUDIENCE" envDefault:"secureapi-clients"`
	TokenExpiration int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"24"`
	PasswordCost    int      `env:"AUTH_PASSWORD_COST" envDefault:"12"`
	DBDSN           string   `env:"AUTH_DB_DSN" envDefault:"file:securedb.db?cache=shared&mode=rwc"`
}

var _ Config = (*EnvConfig)(nil)

// LoadConfig reads and validates configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid auth configuration")
	}

	return cfg, nil
}

// Validate enforces the configuration invariants.
func (c *EnvConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(MinSigningKeyLength, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.Audience, validation.Required),
		validation.Field(&c.TokenExpiration, validation.Min(1)),
	)
}

func (c *EnvConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *EnvConfig) GetIssuer() string {
	return c.Issuer
}

func (c *EnvConfig) GetAudience() []string {
	return c.Audience
}

func (c *EnvConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c *EnvConfig) GetPasswordCost() int {
	return c.PasswordCost
}

func (c *EnvConfig) GetDBDSN() string {
	return c.DBDSN
}
