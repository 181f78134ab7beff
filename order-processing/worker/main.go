package main

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"order-fulfillment/order-processing/activities"
	"order-fulfillment/order-processing/config"
	"order-fulfillment/order-processing/invoice"
	"order-fulfillment/order-processing/logger"
	"order-fulfillment/order-processing/metrics"
	"order-fulfillment/order-processing/notify"
	"order-fulfillment/order-processing/recipient"
	"order-fulfillment/order-processing/store"
	"order-fulfillment/order-processing/workflowclient"
	"order-fulfillment/order-processing/workflows"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		store.Module,
		metrics.Module,
		workflowclient.Module,

		fx.Provide(newIDNode),
		fx.Provide(newRenderer),
		fx.Provide(newResolver),
		fx.Provide(newDispatcher),
		fx.Provide(newOrderActivities),

		fx.Invoke(runWorker),
		fx.Invoke(runMetricsServer),
	)
	app.Run()
}

func newIDNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newRenderer(cfg config.Config, log *zap.Logger) *invoice.Renderer {
	fonts := invoice.FontChain{
		invoice.DirFontSource{Dir: cfg.FontsDir},
		invoice.EmbeddedFontSource{},
	}
	return invoice.NewRenderer(fonts, log)
}

func newResolver(settings *store.SettingsStore, cfg config.Config, log *zap.Logger, m *metrics.Metrics) *recipient.Resolver {
	return recipient.NewResolver(settings, cfg.OrdersEmail, log, m)
}

func newDispatcher(cfg config.Config, ids *snowflake.Node, log *zap.Logger, m *metrics.Metrics) *notify.Dispatcher {
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		ReplyTo:  cfg.SMTP.ReplyTo,
	}, ids)
	return notify.NewDispatcher(mailer, log, m)
}

func newOrderActivities(
	orders *store.OrderRepository,
	renderer *invoice.Renderer,
	resolver *recipient.Resolver,
	dispatcher *notify.Dispatcher,
	m *metrics.Metrics,
) *activities.OrderActivities {
	return &activities.OrderActivities{
		Items:      orders,
		Renderer:   renderer,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Observer:   m,
	}
}

func runWorker(lc fx.Lifecycle, c client.Client, cfg config.Config, acts *activities.OrderActivities, log *zap.Logger) {
	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{
		Identity:                               "order-worker-" + hostname(),
		MaxConcurrentActivityExecutionSize:     100,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	})

	w.RegisterWorkflow(workflows.OrderCreatedWorkflow)
	w.RegisterActivity(acts)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("worker starting",
				zap.String("task_queue", cfg.Temporal.TaskQueue),
				zap.String("identity", "order-worker-"+hostname()),
			)
			return w.Start()
		},
		OnStop: func(context.Context) error {
			w.Stop()
			return nil
		},
	})
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
