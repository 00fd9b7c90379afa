package api

import "errors"

type CORSConfig struct {
	TrustedOrigins []string `yaml:"trusted_origins"`
}

type Config struct {
	Addr     string     `yaml:"addr"`
	CertFile string     `yaml:"cert_file"`
	KeyFile  string     `yaml:"key_file"`
	CORS     CORSConfig `yaml:"cors"`

	// MaxBodyBytes limits the size of request bodies. Defaults to 1MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("api server address is required")
	}

	if c.MaxBodyBytes < 0 {
		return errors.New("api max body bytes cannot be negative")
	}

	return nil
}
