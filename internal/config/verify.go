package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type VerifyConfig struct {
	Sample         int
	Progress       bool
	MaxConcurrency uint
}

func (c VerifyConfig) Validate() error {
	if c.Sample < 0 {
		return fmt.Errorf("sample size must not be negative")
	}
	if c.MaxConcurrency == 0 {
		return fmt.Errorf("max concurrency must be at least 1")
	}
	return nil
}

func LoadVerifyConfigFromCLI() VerifyConfig {
	return VerifyConfig{
		Sample:         viper.GetInt("sample"),
		Progress:       viper.GetBool("progress"),
		MaxConcurrency: viper.GetUint("max-concurrency"),
	}
}
