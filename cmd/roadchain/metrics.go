package roadchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/config"
	"github.com/liftedinit/roadchain/internal/metrics"
	"github.com/liftedinit/roadchain/internal/metrics/collectors"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics about the chain",
	Long: `Serve Prometheus metrics until interrupted. The chain is reloaded from the
store and verified on every scrape. PostgreSQL stores also report their stored block count.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metricsConfig := config.LoadMetricsConfigFromCLI()
		if err := metricsConfig.Validate(); err != nil {
			return fmt.Errorf("invalid Metrics configuration: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		handleInterrupt(cancel)

		l, st, err := openLedger(ctx)
		if err != nil {
			return err
		}
		defer l.Close()

		cs := []prometheus.Collector{collectors.NewChainCollector(l)}
		if s, ok := st.(dbStore); ok {
			sqlCollectors, err := collectors.DefaultRegistry.CreateCollectors(s.DB())
			if err != nil {
				return fmt.Errorf("failed to create collectors: %w", err)
			}
			cs = append(cs, sqlCollectors...)
		}

		server, err := metrics.CreateMetricsServer(metricsConfig.PrometheusAddr, cs...)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on http://%s/metrics\n", server.Addr)

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
		return nil
	},
}

// handleInterrupt handles interrupt signals for graceful shutdown.
func handleInterrupt(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		slog.Info("Received interrupt signal, shutting down...")
		cancel()
	}()
}

func init() {
	metricsCmd.Flags().String("prometheus-addr", "0.0.0.0:2112", "Address and port of the Prometheus metrics server")

	if err := viper.BindPFlags(metricsCmd.Flags()); err != nil {
		slog.Error("Failed to bind metricsCmd flags", "error", err)
	}
}
