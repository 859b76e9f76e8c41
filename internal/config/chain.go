package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/digest"
)

type ChainConfig struct {
	Digest         string
	Genesis        bool
	GenesisPayload string
	Actor          string
}

func (c ChainConfig) Validate() error {
	if _, err := digest.Lookup(c.Digest); err != nil {
		return err
	}
	if c.Genesis && c.GenesisPayload == "" {
		return fmt.Errorf("missing genesis payload")
	}
	return nil
}

// HashFunc returns the configured digest.
func (c ChainConfig) HashFunc() (digest.Digest, error) {
	return digest.Lookup(c.Digest)
}

func LoadChainConfigFromCLI() ChainConfig {
	return ChainConfig{
		Digest:         viper.GetString("digest"),
		Genesis:        viper.GetBool("genesis"),
		GenesisPayload: viper.GetString("genesis-payload"),
		Actor:          viper.GetString("actor"),
	}
}
