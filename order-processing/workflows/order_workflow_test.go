package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap"

	"order-fulfillment/order-processing/activities"
	"order-fulfillment/order-processing/invoice"
	"order-fulfillment/order-processing/notify"
	"order-fulfillment/order-processing/recipient"
	"order-fulfillment/order-processing/types"
)

type stubSettings struct {
	email string
	err   error
}

func (s stubSettings) OrdersEmail(context.Context) (string, error) {
	return s.email, s.err
}

type stubItems struct {
	items []types.OrderItem
	calls int
}

func (s *stubItems) LoadItems(_ context.Context, _ int64) ([]types.OrderItem, error) {
	s.calls++
	return s.items, nil
}

type failingRenderer struct{}

func (failingRenderer) Render(types.Order) ([]byte, error) {
	return nil, &types.RenderError{Msg: "layout exploded"}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func str(s string) *string   { return &s }
func num(v float64) *float64 { return &v }

func wardrobeOrder() types.Order {
	return types.Order{
		ID:        42,
		FirstName: str("Олена"),
		Email:     str("c@x.com"),
		Items: []types.OrderItem{
			{ModelName: str("Wardrobe"), Qty: num(2), UnitPrice: num(500)},
		},
	}
}

type harness struct {
	items  *stubItems
	mailer *recordingMailer
	acts   *activities.OrderActivities
}

func newHarness(t *testing.T, settings stubSettings, fallback string) *harness {
	t.Helper()
	h := &harness{items: &stubItems{}, mailer: &recordingMailer{}}
	h.acts = &activities.OrderActivities{
		Items:      h.items,
		Renderer:   invoice.NewRenderer(invoice.FontChain{invoice.DirFontSource{Dir: t.TempDir()}, invoice.EmbeddedFontSource{}}, zap.NewNop()),
		Resolver:   recipient.NewResolver(settings, fallback, zap.NewNop(), nil),
		Dispatcher: notify.NewDispatcher(h.mailer, zap.NewNop(), nil),
	}
	return h
}

func run(t *testing.T, h *harness, event types.OrderCreatedEvent) types.PipelineStatus {
	t.Helper()
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(OrderCreatedWorkflow)
	env.RegisterActivity(h.acts)

	env.ExecuteWorkflow(OrderCreatedWorkflow, event)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var status types.PipelineStatus
	require.NoError(t, env.GetWorkflowResult(&status))

	queried, err := env.QueryWorkflow(StatusQuery)
	require.NoError(t, err)
	var live types.PipelineStatus
	require.NoError(t, queried.Get(&live))
	assert.Equal(t, status.Stage, live.Stage)
	return status
}

func TestOrderCreatedWorkflowEmailsOperatorAndCustomer(t *testing.T) {
	h := newHarness(t, stubSettings{email: "shop@x.com"}, "")

	status := run(t, h, types.OrderCreatedEvent{Order: wardrobeOrder(), ItemsLoaded: true})

	assert.Equal(t, types.StageDone, status.Stage)
	assert.Equal(t, "1000", status.Total)
	assert.Equal(t, 1, status.ItemCount)
	assert.Equal(t, "shop@x.com", status.OperatorEmail)
	assert.Positive(t, status.DocumentSize)
	assert.Empty(t, status.LastError)
	assert.Equal(t, 2, status.Dispatch.Delivered())
	assert.Zero(t, h.items.calls)

	require.Len(t, h.mailer.sent, 2)
	assert.Equal(t, "shop@x.com", h.mailer.sent[0].To)
	assert.Equal(t, "Нове замовлення #42", h.mailer.sent[0].Subject)
	assert.Equal(t, "c@x.com", h.mailer.sent[1].To)
	assert.Equal(t, "Ваше замовлення #42 отримано", h.mailer.sent[1].Subject)
	for _, msg := range h.mailer.sent {
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "order-42.pdf", msg.Attachments[0].Filename)
		assert.Equal(t, "%PDF-", string(msg.Attachments[0].Content[:5]))
		assert.Len(t, msg.Attachments[0].Content, status.DocumentSize)
	}
}

func TestOrderCreatedWorkflowReloadsItems(t *testing.T) {
	h := newHarness(t, stubSettings{email: "shop@x.com"}, "")
	h.items.items = wardrobeOrder().Items

	order := wardrobeOrder()
	order.Items = nil
	status := run(t, h, types.OrderCreatedEvent{Order: order, ItemsLoaded: false})

	assert.Equal(t, 1, h.items.calls)
	assert.Equal(t, types.StageDone, status.Stage)
	assert.Equal(t, "1000", status.Total)
	assert.Len(t, h.mailer.sent, 2)
}

func TestOrderCreatedWorkflowWithoutOperatorAddress(t *testing.T) {
	h := newHarness(t, stubSettings{err: errors.New("settings unavailable")}, "")

	status := run(t, h, types.OrderCreatedEvent{Order: wardrobeOrder(), ItemsLoaded: true})

	assert.Equal(t, types.StageSkipped, status.Stage)
	assert.Empty(t, status.OperatorEmail)
	assert.NotEmpty(t, status.LastError)
	assert.Empty(t, h.mailer.sent)
}

func TestOrderCreatedWorkflowUsesFallbackAddress(t *testing.T) {
	h := newHarness(t, stubSettings{err: errors.New("settings unavailable")}, "ops@x.com")

	status := run(t, h, types.OrderCreatedEvent{Order: wardrobeOrder(), ItemsLoaded: true})

	assert.Equal(t, types.StageDone, status.Stage)
	require.Len(t, h.mailer.sent, 2)
	assert.Equal(t, "ops@x.com", h.mailer.sent[0].To)
}

func TestOrderCreatedWorkflowRenderFailureSendsNothing(t *testing.T) {
	h := newHarness(t, stubSettings{email: "shop@x.com"}, "")
	h.acts.Renderer = failingRenderer{}

	status := run(t, h, types.OrderCreatedEvent{Order: wardrobeOrder(), ItemsLoaded: true})

	assert.Equal(t, types.StageFailed, status.Stage)
	assert.Contains(t, status.LastError, "layout exploded")
	assert.Empty(t, h.mailer.sent)
}

func TestOrderCreatedWorkflowRejectsMissingID(t *testing.T) {
	h := newHarness(t, stubSettings{email: "shop@x.com"}, "")

	status := run(t, h, types.OrderCreatedEvent{Order: types.Order{}, ItemsLoaded: true})

	assert.Equal(t, types.StageFailed, status.Stage)
	assert.Contains(t, status.LastError, "order id is missing")
	assert.Empty(t, h.mailer.sent)
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "order-created-42", WorkflowID(42))
}
