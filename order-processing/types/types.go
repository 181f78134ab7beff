package types

import (
	"strings"
	"time"
)

// Size holds the optional dimensions of an ordered item
type Size struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
	Depth  *int `json:"depth,omitempty"`
}

// Material is a body or front material reference
type Material struct {
	ID    *int64  `json:"id,omitempty"`
	Title *string `json:"title,omitempty"`
}

// OrderItem represents one purchased line of an order
type OrderItem struct {
	ProductID     string    `json:"productId,omitempty"`
	ModelName     *string   `json:"model_name,omitempty"`
	Qty           *float64  `json:"qty,omitempty"`
	UnitPrice     *float64  `json:"unit_price,omitempty"`
	LineTotal     *float64  `json:"line_total,omitempty"`
	Size          *Size     `json:"size,omitempty"`
	BodyMaterial  *Material `json:"body_material,omitempty"`
	FrontMaterial *Material `json:"front_material,omitempty"`
	ProductImg    *string   `json:"product_img,omitempty"`
}

// Order represents a created sales order
type Order struct {
	ID                  int64       `json:"id"`
	DocumentID          string      `json:"documentId,omitempty"`
	FirstName           *string     `json:"first_name,omitempty"`
	LastName            *string     `json:"last_name,omitempty"`
	Email               *string     `json:"email,omitempty"`
	Phone               *string     `json:"phone,omitempty"`
	DeliveryMethod      *string     `json:"delivery_method,omitempty"`
	DeliveryAddress     *string     `json:"delivery_address,omitempty"`
	PaymentMethod       *string     `json:"payment_method,omitempty"`
	PrepaymentAgreement *bool       `json:"prepayment_agreement,omitempty"`
	Comment             *string     `json:"comment,omitempty"`
	CreatedAt           *time.Time  `json:"createdAt,omitempty"`
	Items               []OrderItem `json:"items,omitempty"`
}

// CustomerName joins first and last name, skipping missing parts
func (o Order) CustomerName() string {
	return strings.TrimSpace(Value(o.FirstName) + " " + Value(o.LastName))
}

// CustomerEmail returns the trimmed customer address or an empty string
func (o Order) CustomerEmail() string {
	return strings.TrimSpace(Value(o.Email))
}

// OrderCreatedEvent is the workflow input emitted once per created order.
// ItemsLoaded is false when the event carries only the order row and the
// item collection has to be fetched again.
type OrderCreatedEvent struct {
	Order       Order
	ItemsLoaded bool
}

// Pipeline stages reported through the get-status query
const (
	StageReceived   = "received"
	StageEnriched   = "enriched"
	StageRendered   = "rendered"
	StageResolved   = "resolved"
	StageDispatched = "dispatched"
	StageDone       = "done"
	StageFailed     = "failed"
	StageSkipped    = "skipped"
)

// PipelineStatus represents the current state of an order notification run
type PipelineStatus struct {
	OrderID       int64
	Stage         string
	ItemCount     int
	Total         string
	DocumentSize  int
	OperatorEmail string
	Dispatch      DispatchResult
	LastError     string
}

// RecipientRole identifies who a notification was addressed to
type RecipientRole string

const (
	RoleOperator RecipientRole = "operator"
	RoleCustomer RecipientRole = "customer"
)

// RecipientResult is the outcome of one send attempt
type RecipientResult struct {
	Role    RecipientRole
	Address string
	Subject string
	Sent    bool
	Error   string
}

// DispatchResult collects one result per attempted recipient
type DispatchResult struct {
	Results []RecipientResult
}

// Attempted returns the number of transport calls that were made
func (r DispatchResult) Attempted() int {
	return len(r.Results)
}

// Delivered returns the number of successful sends
func (r DispatchResult) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if res.Sent {
			n++
		}
	}
	return n
}

// Value dereferences a nullable string, treating nil as empty
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
