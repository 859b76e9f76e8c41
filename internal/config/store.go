package config

import (
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type StoreConfig struct {
	Kind       string
	Path       string
	ConnString string
	MaxConns   uint
}

func (c StoreConfig) Validate() error {
	switch c.Kind {
	case StoreJSON:
		if c.Path == "" {
			return fmt.Errorf("missing chain file path")
		}
	case StorePostgres:
		return c.validatePostgres()
	case StoreMemory:
	default:
		return fmt.Errorf("invalid store: %s. Valid stores are: %s|%s|%s", c.Kind, StoreJSON, StoreMemory, StorePostgres)
	}
	return nil
}

func (c StoreConfig) validatePostgres() error {
	if c.ConnString == "" {
		return fmt.Errorf("missing PostgreSQL connection string")
	}

	_, err := pgxpool.ParseConfig(c.ConnString)
	if err != nil {
		return fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	if c.MaxConns > math.MaxInt32 {
		return fmt.Errorf("max connections exceeds maximum int32 value")
	}

	return nil
}

func LoadStoreConfigFromCLI() StoreConfig {
	return StoreConfig{
		Kind:       viper.GetString("store"),
		Path:       viper.GetString("path"),
		ConnString: viper.GetString("postgres-conn"),
		MaxConns:   viper.GetUint("max-conns"),
	}
}
