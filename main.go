package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog, cart, checkout and payment API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (env variables override it)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(viper.New(), configFile)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.New(cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return cfg, log, nil
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer log.Sync()
			return serve(cmd.Context(), cfg, log)
		},
	})
	rootCmd.AddCommand(newSeedCmd(load))
	return rootCmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	publisher, closePublisher, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	app, _ := newApp(cfg, st, publisher, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		errCh <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("fiber shutdown failed", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}

// openPublisher connects to RabbitMQ when RABBITMQ_URL is set and starts the order event
// consumer; otherwise events are dropped.
func openPublisher(cfg *config.Config, log *zap.Logger) (services.EventPublisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		log.Info("RABBITMQ_URL not set, order events are discarded")
		return rabbitmq.Discard{Log: log}, func() {}, nil
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
	if err != nil {
		return nil, nil, err
	}
	go func() {
		if err := client.ConsumeOrderEvents(rabbitmq.LogOrderEvent(log)); err != nil {
			log.Error("order event consumer stopped", zap.Error(err))
		}
	}()
	return client, func() {
		if err := client.Close(); err != nil {
			log.Warn("closing RabbitMQ client", zap.Error(err))
		}
	}, nil
}
