// Package workflowclient provides the Temporal client shared by the worker and starter.
package workflowclient

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"order-fulfillment/order-processing/config"
	"order-fulfillment/order-processing/logger"
)

var Module = fx.Module("workflowclient",
	fx.Provide(Dial),
)

// Dial connects to the Temporal frontend and closes the client on shutdown
func Dial(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (client.Client, error) {
	c, err := client.Dial(Options(cfg, log))
	if err != nil {
		return nil, fmt.Errorf("temporal dial %s: %w", cfg.Temporal.HostPort, err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return c, nil
}

func Options(cfg config.Config, log *zap.Logger) client.Options {
	return client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger.NewTemporalLogger(log.Named("temporal")),
	}
}
