package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"order-fulfillment/order-processing/types"
)

type recordingMailer struct {
	mu     sync.Mutex
	sent   []Message
	failTo map[string]error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.failTo[msg.To]
}

type outcomes map[string]int

func (o outcomes) IncDispatch(role, result string) { o[role+":"+result]++ }

func str(s string) *string { return &s }

var document = []byte("%PDF-1.3 test")

func TestDispatchWithoutOperatorMakesNoCalls(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zap.NewNop(), nil)

	res := d.Dispatch(context.Background(), types.Order{ID: 1, Email: str("c@x.com")}, document, "")
	assert.Empty(t, mailer.sent)
	assert.Equal(t, 0, res.Attempted())
}

func TestDispatchOperatorOnly(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zap.NewNop(), nil)

	res := d.Dispatch(context.Background(), types.Order{ID: 42, Email: str("  ")}, document, "shop@x.com")
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "shop@x.com", msg.To)
	assert.Contains(t, msg.Subject, "#42")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "order-42.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, PDFContentType, msg.Attachments[0].ContentType)
	assert.Equal(t, document, msg.Attachments[0].Content)
	assert.Equal(t, 1, res.Delivered())
}

func TestDispatchOperatorAndCustomer(t *testing.T) {
	mailer := &recordingMailer{}
	obs := outcomes{}
	d := NewDispatcher(mailer, zap.NewNop(), obs)

	order := types.Order{ID: 42, FirstName: str("Olena"), Email: str("c@x.com")}
	res := d.Dispatch(context.Background(), order, document, "shop@x.com")

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "shop@x.com", mailer.sent[0].To)
	assert.Equal(t, "c@x.com", mailer.sent[1].To)
	assert.NotEqual(t, mailer.sent[0].Subject, mailer.sent[1].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "Olena")
	for _, msg := range mailer.sent {
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "order-42.pdf", msg.Attachments[0].Filename)
	}
	assert.Equal(t, 2, res.Delivered())
	assert.Equal(t, 1, obs["operator:sent"])
	assert.Equal(t, 1, obs["customer:sent"])
}

func TestDispatchOperatorFailureStillNotifiesCustomer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	mailer := &recordingMailer{failTo: map[string]error{"shop@x.com": errors.New("535 auth failed")}}
	obs := outcomes{}
	d := NewDispatcher(mailer, zap.New(core), obs)

	res := d.Dispatch(context.Background(), types.Order{ID: 7, Email: str("c@x.com")}, document, "shop@x.com")

	require.Len(t, mailer.sent, 2)
	require.Len(t, res.Results, 2)
	assert.False(t, res.Results[0].Sent)
	assert.Contains(t, res.Results[0].Error, "535 auth failed")
	assert.True(t, res.Results[1].Sent)
	assert.Equal(t, 1, obs["operator:failed"])

	entries := logs.FilterMessage("invoice email failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "shop@x.com", entries[0].ContextMap()["to"])
	assert.Equal(t, "operator", entries[0].ContextMap()["role"])
}

func TestDispatchCustomerFailureIsReported(t *testing.T) {
	mailer := &recordingMailer{failTo: map[string]error{"c@x.com": errors.New("mailbox unavailable")}}
	d := NewDispatcher(mailer, zap.NewNop(), nil)

	res := d.Dispatch(context.Background(), types.Order{ID: 7, Email: str("c@x.com")}, document, "shop@x.com")
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Sent)
	assert.Equal(t, types.RoleCustomer, res.Results[1].Role)
	assert.False(t, res.Results[1].Sent)
}

func TestDispatchEscapesCustomerInput(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, zap.NewNop(), nil)

	d.Dispatch(context.Background(), types.Order{ID: 3, FirstName: str("<script>")}, document, "shop@x.com")
	require.Len(t, mailer.sent, 1)
	assert.NotContains(t, mailer.sent[0].HTML, "<script>")
}

func TestSenderDomain(t *testing.T) {
	assert.Equal(t, "x.com", senderDomain("Shop <orders@x.com>"))
	assert.Equal(t, "x.com", senderDomain("orders@x.com"))
	assert.Equal(t, "localhost", senderDomain(""))
}

func TestSMTPMailerBuild(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "Shop <orders@x.com>", ReplyTo: "help@x.com"}, nil)
	msg, err := m.build(Message{
		To:          "c@x.com",
		Subject:     "Ваше замовлення #1 отримано",
		HTML:        "<p>ok</p>",
		Attachments: []Attachment{{Filename: "order-1.pdf", Content: document, ContentType: PDFContentType}},
	})
	require.NoError(t, err)
	require.NotNil(t, msg)

	_, err = m.build(Message{To: "not an address"})
	assert.Error(t, err)
}
