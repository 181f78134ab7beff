// Package notify emails the rendered invoice to the shop operator and the customer.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"order-fulfillment/order-processing/money"
	"order-fulfillment/order-processing/types"
)

var (
	operatorBody = template.Must(template.New("operator").Parse(
		`<p><b>Нове замовлення #{{.ID}}</b></p>` +
			`<p>Клієнт: {{.Name}}</p>` +
			`<p>Email: {{.Email}}</p>` +
			`<p>Сума: {{.Total}}</p>` +
			`<p>Деталі у вкладеному PDF.</p>`))

	customerBody = template.Must(template.New("customer").Parse(
		`<p>Дякуємо! Ваше замовлення #{{.ID}} отримано.</p>` +
			`<p>Деталі у вкладеному PDF. Ми з вами зв'яжемося найближчим часом.</p>`))
)

type bodyData struct {
	ID    int64
	Name  string
	Email string
	Total string
}

// DispatchObserver records per-recipient outcomes
type DispatchObserver interface {
	IncDispatch(role, result string)
}

// Dispatcher sends the invoice to up to two recipients
type Dispatcher struct {
	mailer   Mailer
	log      *zap.Logger
	observer DispatchObserver
}

func NewDispatcher(mailer Mailer, log *zap.Logger, observer DispatchObserver) *Dispatcher {
	return &Dispatcher{
		mailer:   mailer,
		log:      log.Named("notify"),
		observer: observer,
	}
}

// AttachmentName is the file name used for the invoice of an order
func AttachmentName(orderID int64) string {
	return fmt.Sprintf("order-%d.pdf", orderID)
}

// Dispatch emails the document to the operator and, when the order has an
// address, to the customer. Every recipient is attempted on its own and
// failures are reported in the result rather than returned.
func (d *Dispatcher) Dispatch(ctx context.Context, order types.Order, document []byte, operatorEmail string) types.DispatchResult {
	var result types.DispatchResult
	if operatorEmail == "" {
		d.log.Warn("no operator email, skipping dispatch", zap.Int64("order_id", order.ID))
		return result
	}

	data := bodyData{
		ID:    order.ID,
		Name:  order.CustomerName(),
		Email: order.CustomerEmail(),
		Total: money.Format(money.OrderTotal(order.Items)),
	}
	attachment := Attachment{
		Filename:    AttachmentName(order.ID),
		Content:     document,
		ContentType: PDFContentType,
	}

	result.Results = append(result.Results, d.send(ctx, order.ID, types.RoleOperator, operatorEmail,
		fmt.Sprintf("Нове замовлення #%d", order.ID), operatorBody, data, attachment))

	if customer := order.CustomerEmail(); customer != "" {
		result.Results = append(result.Results, d.send(ctx, order.ID, types.RoleCustomer, customer,
			fmt.Sprintf("Ваше замовлення #%d отримано", order.ID), customerBody, data, attachment))
	}
	return result
}

func (d *Dispatcher) send(
	ctx context.Context,
	orderID int64,
	role types.RecipientRole,
	to, subject string,
	body *template.Template,
	data bodyData,
	attachment Attachment,
) types.RecipientResult {
	res := types.RecipientResult{Role: role, Address: to, Subject: subject}
	log := d.log.With(zap.Int64("order_id", orderID), zap.String("role", string(role)), zap.String("to", to))

	err := d.deliver(ctx, to, subject, body, data, attachment)
	if err != nil {
		dispatchErr := &types.DispatchError{Role: role, Address: to, Msg: err.Error()}
		res.Error = dispatchErr.Error()
		log.Error("invoice email failed", zap.Error(dispatchErr))
		d.observe(role, "failed")
		return res
	}

	res.Sent = true
	log.Info("invoice email sent")
	d.observe(role, "sent")
	return res
}

func (d *Dispatcher) deliver(
	ctx context.Context,
	to, subject string,
	body *template.Template,
	data bodyData,
	attachment Attachment,
) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mailer panic: %v", rec)
		}
	}()

	var html bytes.Buffer
	if err := body.Execute(&html, data); err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	return d.mailer.Send(ctx, Message{
		To:          to,
		Subject:     subject,
		HTML:        html.String(),
		Attachments: []Attachment{attachment},
	})
}

func (d *Dispatcher) observe(role types.RecipientRole, result string) {
	if d.observer != nil {
		d.observer.IncDispatch(string(role), result)
	}
}
