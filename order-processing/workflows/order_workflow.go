package workflows

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"order-fulfillment/order-processing/money"
	"order-fulfillment/order-processing/types"
)

// StatusQuery is the query name returning the live PipelineStatus
const StatusQuery = "get-status"

// WorkflowID is the workflow id used for the notification run of an order
func WorkflowID(orderID int64) string {
	return fmt.Sprintf("order-created-%d", orderID)
}

// OrderCreatedWorkflow runs the notification side effects for one created order:
// - reload items when the event does not carry them
// - render the invoice document
// - resolve the operator address
// - email operator and customer
// Any failing step ends the run early. The workflow itself always completes
// successfully so the outcome is read from the returned status.
func OrderCreatedWorkflow(ctx workflow.Context, event types.OrderCreatedEvent) (types.PipelineStatus, error) {
	logger := workflow.GetLogger(ctx)
	order := event.Order

	status := types.PipelineStatus{
		OrderID: order.ID,
		Stage:   types.StageReceived,
	}

	// Every side effect is attempted exactly once
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        1,
			NonRetryableErrorTypes: []string{"RenderError", "ValidationError"},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	err := workflow.SetQueryHandler(ctx, StatusQuery, func() (types.PipelineStatus, error) {
		return status, nil
	})
	if err != nil {
		logger.Warn("Status query unavailable", "error", err)
	}

	fail := func(stage string, err error) (types.PipelineStatus, error) {
		status.Stage = types.StageFailed
		status.LastError = fmt.Sprintf("%s: %v", stage, err)
		logger.Error("Order notification stopped", "orderID", order.ID, "step", stage, "error", err)
		return status, nil
	}

	if order.ID == 0 {
		return fail("received", &types.ValidationError{Msg: "order id is missing"})
	}

	// Step 1: make sure the item collection is present
	if !event.ItemsLoaded {
		var items []types.OrderItem
		if err := workflow.ExecuteActivity(ctx, "LoadOrderItems", order.ID).Get(ctx, &items); err != nil {
			return fail(types.StageEnriched, err)
		}
		order.Items = items
	}
	status.Stage = types.StageEnriched
	status.ItemCount = len(order.Items)
	status.Total = money.OrderTotal(order.Items).String()
	logger.Info("Order enriched", "orderID", order.ID, "items", status.ItemCount)

	// Step 2: render the document; nothing is sent without it
	var document []byte
	if err := workflow.ExecuteActivity(ctx, "RenderInvoice", order).Get(ctx, &document); err != nil {
		return fail(types.StageRendered, err)
	}
	status.Stage = types.StageRendered
	status.DocumentSize = len(document)

	// Step 3: resolve the operator address
	var operatorEmail string
	if err := workflow.ExecuteActivity(ctx, "ResolveOperatorEmail").Get(ctx, &operatorEmail); err != nil {
		return fail(types.StageResolved, err)
	}
	status.OperatorEmail = operatorEmail
	if operatorEmail == "" {
		noAddress := &types.NoOperatorAddressError{Msg: "no operator email configured"}
		status.Stage = types.StageSkipped
		status.LastError = noAddress.Error()
		logger.Warn("No operator email, skipping notification", "orderID", order.ID)
		return status, nil
	}
	status.Stage = types.StageResolved

	// Step 4: email operator and customer
	var dispatch types.DispatchResult
	if err := workflow.ExecuteActivity(ctx, "DispatchInvoice", order, document, operatorEmail).Get(ctx, &dispatch); err != nil {
		return fail(types.StageDispatched, err)
	}
	status.Stage = types.StageDispatched
	status.Dispatch = dispatch

	var failures []string
	for _, res := range dispatch.Results {
		if !res.Sent {
			failures = append(failures, res.Error)
		}
	}
	if len(failures) > 0 {
		status.LastError = strings.Join(failures, "; ")
		logger.Warn("Some invoice emails failed", "orderID", order.ID, "failed", len(failures))
	}

	status.Stage = types.StageDone
	logger.Info("Order notification completed", "orderID", order.ID,
		"delivered", dispatch.Delivered(), "attempted", dispatch.Attempted())
	return status, nil
}
