// Package trigger starts the notification workflow for newly created orders.
package trigger

import (
	"context"

	"go.temporal.io/sdk/client"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"order-fulfillment/order-processing/config"
	"order-fulfillment/order-processing/store"
	"order-fulfillment/order-processing/types"
	"order-fulfillment/order-processing/workflows"
)

var Module = fx.Module("trigger",
	fx.Provide(func(c client.Client, cfg config.Config, log *zap.Logger) *Trigger {
		return New(c, cfg.Temporal.TaskQueue, log)
	}),
	fx.Invoke(func(db *gorm.DB, t *Trigger) error {
		return store.RegisterOrderCreatedHook(db, t.OrderCreated)
	}),
)

// Trigger hands created orders to the workflow engine
type Trigger struct {
	client    client.Client
	taskQueue string
	log       *zap.Logger
}

func New(c client.Client, taskQueue string, log *zap.Logger) *Trigger {
	return &Trigger{client: c, taskQueue: taskQueue, log: log.Named("trigger")}
}

// OrderCreated starts one OrderCreatedWorkflow for the order. It never
// returns an error: a failed start is logged and the caller's create proceeds.
func (t *Trigger) OrderCreated(ctx context.Context, order types.Order, itemsLoaded bool) {
	options := client.StartWorkflowOptions{
		ID:        workflows.WorkflowID(order.ID),
		TaskQueue: t.taskQueue,
	}
	log := t.log.With(zap.Int64("order_id", order.ID), zap.String("workflow_id", options.ID))

	event := types.OrderCreatedEvent{Order: order, ItemsLoaded: itemsLoaded}
	if _, err := t.client.ExecuteWorkflow(ctx, options, workflows.OrderCreatedWorkflow, event); err != nil {
		log.Error("cannot start order notification", zap.Error(err))
		return
	}
	log.Info("order notification started", zap.Bool("items_loaded", itemsLoaded))
}
