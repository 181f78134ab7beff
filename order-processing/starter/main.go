package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"order-fulfillment/order-processing/config"
	"order-fulfillment/order-processing/logger"
	"order-fulfillment/order-processing/store"
	"order-fulfillment/order-processing/trigger"
	"order-fulfillment/order-processing/types"
	"order-fulfillment/order-processing/workflowclient"
	"order-fulfillment/order-processing/workflows"
)

// The starter either re-runs the notification for an existing order
// (ORDER_ID) or creates a sample order, which fires the create hook.
func main() {
	os.Exit(execute())
}

func execute() int {
	var (
		c      client.Client
		cfg    config.Config
		db     *gorm.DB
		orders *store.OrderRepository
		log    *zap.Logger
	)
	app := fx.New(
		config.Module,
		logger.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		store.Module,
		workflowclient.Module,
		trigger.Module,
		fx.Populate(&c, &cfg, &db, &orders, &log),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		if log == nil {
			log = zap.Must(zap.NewProduction())
		}
		log.Error("unable to start", zap.Error(err))
		return 1
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Stop(stopCtx); err != nil {
			log.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	if err := run(context.Background(), c, cfg, db, orders, log); err != nil {
		log.Error("order notification run failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context, c client.Client, cfg config.Config, db *gorm.DB, orders *store.OrderRepository, log *zap.Logger) error {
	var workflowRun client.WorkflowRun

	if raw := os.Getenv("ORDER_ID"); raw != "" {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ORDER_ID %q: %w", raw, err)
		}
		order, err := orders.FindOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order %d: %w", orderID, err)
		}

		workflowOptions := client.StartWorkflowOptions{
			ID:        workflows.WorkflowID(order.ID),
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		event := types.OrderCreatedEvent{Order: order, ItemsLoaded: true}
		workflowRun, err = c.ExecuteWorkflow(ctx, workflowOptions, workflows.OrderCreatedWorkflow, event)
		if err != nil {
			return fmt.Errorf("start workflow: %w", err)
		}
	} else {
		if getEnv("AUTO_MIGRATE", "false") == "true" {
			if err := store.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		order, err := orders.CreateOrder(ctx, sampleOrder())
		if err != nil {
			return fmt.Errorf("create sample order: %w", err)
		}
		log.Info("sample order created", zap.Int64("order_id", order.ID))
		workflowRun = c.GetWorkflow(ctx, workflows.WorkflowID(order.ID), "")
	}

	log.Info("workflow started",
		zap.String("workflow_id", workflowRun.GetID()),
		zap.String("run_id", workflowRun.GetRunID()),
	)

	var status types.PipelineStatus
	if err := workflowRun.Get(ctx, &status); err != nil {
		return fmt.Errorf("workflow execution: %w", err)
	}

	log.Info("order notification finished",
		zap.Int64("order_id", status.OrderID),
		zap.String("stage", status.Stage),
		zap.Int("items", status.ItemCount),
		zap.String("total", status.Total),
		zap.Int("document_bytes", status.DocumentSize),
		zap.Int("emails_sent", status.Dispatch.Delivered()),
		zap.String("last_error", status.LastError),
	)
	return nil
}

func sampleOrder() types.Order {
	str := func(s string) *string { return &s }
	num := func(v float64) *float64 { return &v }
	dim := func(v int) *int { return &v }
	return types.Order{
		FirstName:       str(getEnv("SAMPLE_FIRST_NAME", "Олена")),
		LastName:        str(getEnv("SAMPLE_LAST_NAME", "Коваленко")),
		Email:           str(getEnv("SAMPLE_EMAIL", "")),
		Phone:           str("+380501234567"),
		DeliveryMethod:  str("Нова Пошта"),
		DeliveryAddress: str("Київ, відділення 12"),
		PaymentMethod:   str("Оплата при отриманні"),
		Items: []types.OrderItem{
			{
				ModelName:    str("Шафа-купе"),
				Qty:          num(1),
				UnitPrice:    num(18500),
				Size:         &types.Size{Width: dim(180), Height: dim(240), Depth: dim(60)},
				BodyMaterial: &types.Material{Title: str("Дуб сонома")},
			},
			{ModelName: str("Полиця"), Qty: num(3), UnitPrice: num(950)},
		},
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
