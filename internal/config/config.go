package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Paseto   PasetoConfig   `yaml:"paseto"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type PasetoConfig struct {
	// LocalKey is the operator-supplied symmetric key material. It is
	// normalized to the AES-256 key length by the token service.
	LocalKey        string `yaml:"local_key"`
	Issuer          string `yaml:"issuer"`
	AccessAudience  string `yaml:"access_audience"`
	RefreshAudience string `yaml:"refresh_audience"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.applyDefaults()
	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "paseto-api.db",
		},
		Paseto: PasetoConfig{
			LocalKey:        "default-secret-key-min-32-chars-long!!!",
			Issuer:          "paseto-api",
			AccessAudience:  "paseto-api",
			RefreshAudience: "paseto-api-refresh",
		},
	}
}

// applyDefaults fills in fields a partial config file left empty.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Database.Driver == "" {
		c.Database.Driver = def.Database.Driver
	}
	if c.Database.DSN == "" {
		c.Database.DSN = def.Database.DSN
	}
	if c.Paseto.LocalKey == "" {
		c.Paseto.LocalKey = def.Paseto.LocalKey
	}
	if c.Paseto.Issuer == "" {
		c.Paseto.Issuer = def.Paseto.Issuer
	}
	if c.Paseto.AccessAudience == "" {
		c.Paseto.AccessAudience = def.Paseto.AccessAudience
	}
	if c.Paseto.RefreshAudience == "" {
		c.Paseto.RefreshAudience = def.Paseto.RefreshAudience
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if key := os.Getenv("PASETO_LOCAL_KEY"); key != "" {
		c.Paseto.LocalKey = key
	}
	if issuer := os.Getenv("PASETO_ISSUER"); issuer != "" {
		c.Paseto.Issuer = issuer
	}
	if aud := os.Getenv("PASETO_ACCESS_AUDIENCE"); aud != "" {
		c.Paseto.AccessAudience = aud
	}
	if aud := os.Getenv("PASETO_REFRESH_AUDIENCE"); aud != "" {
		c.Paseto.RefreshAudience = aud
	}
}
