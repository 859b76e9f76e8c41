package config

import (
	"fmt"
	"net"

	"github.com/spf13/viper"
)

type MetricsConfig struct {
	PrometheusAddr string
}

func (c MetricsConfig) Validate() error {
	if c.PrometheusAddr == "" {
		return fmt.Errorf("missing Prometheus address")
	}
	if _, _, err := net.SplitHostPort(c.PrometheusAddr); err != nil {
		return fmt.Errorf("invalid Prometheus address: %w", err)
	}
	return nil
}

func LoadMetricsConfigFromCLI() MetricsConfig {
	return MetricsConfig{
		PrometheusAddr: viper.GetString("prometheus-addr"),
	}
}
