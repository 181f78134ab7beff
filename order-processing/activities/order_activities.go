package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"order-fulfillment/order-processing/types"
)

// MaxDocumentBytes caps the rendered invoice; the document travels through
// workflow history as a render result and again as a dispatch input
const MaxDocumentBytes = 1 << 20

// ItemLoader refetches the item collection of an order
type ItemLoader interface {
	LoadItems(ctx context.Context, orderID int64) ([]types.OrderItem, error)
}

// DocumentRenderer produces the invoice document for an order
type DocumentRenderer interface {
	Render(order types.Order) ([]byte, error)
}

// OperatorResolver resolves the operator notification address
type OperatorResolver interface {
	ResolveOperatorEmail(ctx context.Context) string
}

// InvoiceDispatcher sends the document to the order's recipients
type InvoiceDispatcher interface {
	Dispatch(ctx context.Context, order types.Order, document []byte, operatorEmail string) types.DispatchResult
}

// RenderObserver records render outcomes
type RenderObserver interface {
	ObserveRender(elapsed time.Duration, err error)
}

// OrderActivities contains the side effects run for each created order
type OrderActivities struct {
	Items      ItemLoader
	Renderer   DocumentRenderer
	Resolver   OperatorResolver
	Dispatcher InvoiceDispatcher
	Observer   RenderObserver
}

// LoadOrderItems fetches the items of an order that arrived without them
func (a *OrderActivities) LoadOrderItems(ctx context.Context, orderID int64) ([]types.OrderItem, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Loading order items", "orderID", orderID)

	if a.Items == nil {
		return nil, &types.ValidationError{Msg: "no order repository configured"}
	}
	items, err := a.Items.LoadItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load items for order %d: %w", orderID, err)
	}

	logger.Info("Order items loaded", "orderID", orderID, "count", len(items))
	return items, nil
}

// RenderInvoice renders the invoice document for an order
func (a *OrderActivities) RenderInvoice(ctx context.Context, order types.Order) ([]byte, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Rendering invoice", "orderID", order.ID, "items", len(order.Items))

	started := time.Now()
	document, err := a.Renderer.Render(order)
	if err == nil && len(document) > MaxDocumentBytes {
		document = nil
		err = &types.RenderError{Msg: fmt.Sprintf("invoice for order %d exceeds %d bytes", order.ID, MaxDocumentBytes)}
	}
	if a.Observer != nil {
		a.Observer.ObserveRender(time.Since(started), err)
	}
	if err != nil {
		logger.Error("Invoice rendering failed", "orderID", order.ID, "error", err)
		return nil, err
	}

	logger.Info("Invoice rendered", "orderID", order.ID, "bytes", len(document))
	return document, nil
}

// ResolveOperatorEmail resolves where the operator notification goes. It
// never fails; an empty address means there is nobody to notify.
func (a *OrderActivities) ResolveOperatorEmail(ctx context.Context) (string, error) {
	logger := activity.GetLogger(ctx)

	email := a.Resolver.ResolveOperatorEmail(ctx)
	logger.Info("Operator email resolved", "found", email != "")
	return email, nil
}

// DispatchInvoice emails the document. Per-recipient failures are part of
// the result, so the activity itself never fails.
func (a *OrderActivities) DispatchInvoice(ctx context.Context, order types.Order, document []byte, operatorEmail string) (types.DispatchResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Dispatching invoice", "orderID", order.ID)

	result := a.Dispatcher.Dispatch(ctx, order, document, operatorEmail)

	logger.Info("Invoice dispatched", "orderID", order.ID,
		"attempted", result.Attempted(), "delivered", result.Delivered())
	return result, nil
}
