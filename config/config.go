package config

import "github.com/spf13/viper"

type Config struct {
	Server Server
	Store  StoreConfig
	Auth   Auth
}

type Server struct {
	Addr string
}

// StoreConfig selects the storage backend. Driver is one of "memory",
// "sqlite3" or "postgres"; DSN is ignored for the memory backend.
type StoreConfig struct {
	Driver string
	DSN    string
}

type Auth struct {
	CookieSecret string
}

// Load reads config.yaml from path (optional; defaults apply when the
// file is absent) and unmarshals it.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "socialite.db")
	v.SetDefault("auth.cookiesecret", "super-secret-key-change-me-in-production")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
