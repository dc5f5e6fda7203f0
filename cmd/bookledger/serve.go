package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"bookledger/internal/events"
	"bookledger/internal/observability"
	"bookledger/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().StringSlice("kafka-brokers", nil, "kafka brokers for sale events")
	cmd.Flags().String("otel-endpoint", "", "OTLP/HTTP collector endpoint (host:port)")
	bind(a.v, "http.addr", cmd.Flags().Lookup("addr"))
	bind(a.v, "kafka.brokers", cmd.Flags().Lookup("kafka-brokers"))
	bind(a.v, "otel.endpoint", cmd.Flags().Lookup("otel-endpoint"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, version, a.cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			a.logger.Error("failed to shutdown tracing", zap.Error(err))
		}
	}()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var publisher events.Publisher = events.Nop{}
	if len(a.cfg.KafkaBrokers) > 0 {
		writer := events.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.cfg.KafkaTimeout)
		publisher = events.NewKafkaPublisher(writer, a.cfg.KafkaTimeout, a.logger.Named("events"))
		a.logger.Info("publishing sale events",
			zap.Strings("brokers", a.cfg.KafkaBrokers),
			zap.String("topic", a.cfg.KafkaTopic),
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			a.logger.Error("failed to close publisher", zap.Error(err))
		}
	}()

	router, err := server.NewRouter(st, publisher, a.logger, server.Options{
		RateLimit: rate.Limit(a.cfg.RateLimitRPS),
		Burst:     a.cfg.RateLimitBurst,
	})
	if err != nil {
		return err
	}
	return server.Run(ctx, a.cfg.HTTPAddr, router, a.cfg.ShutdownTimeout, a.logger)
}
