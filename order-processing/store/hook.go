package store

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"order-fulfillment/order-processing/types"
)

const hookName = "orders:notify_created"

// CreatedFunc receives every committed order. It must not fail the create,
// so it has no error to return.
type CreatedFunc func(ctx context.Context, order types.Order, itemsLoaded bool)

// RegisterOrderCreatedHook calls notify once an order and its nested items
// are committed. Creates inside a caller-owned transaction are announced only
// when that transaction goes through OrderRepository.Transaction; otherwise
// they are not announced at all. Items created separately are picked up by
// the pipeline's reload step.
func RegisterOrderCreatedHook(db *gorm.DB, notify CreatedFunc) error {
	return db.Callback().Create().
		After("gorm:commit_or_rollback_transaction").
		Register(hookName, func(tx *gorm.DB) {
			if tx.Error != nil || tx.Statement.Schema == nil || tx.Statement.Schema.Table != (OrderRow{}).TableName() {
				return
			}
			ctx := tx.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}

			rows := createdOrders(tx.Statement.Dest)
			if _, open := tx.Statement.ConnPool.(gorm.TxCommitter); open {
				if pending := pendingFrom(ctx); pending != nil {
					for _, row := range rows {
						order, itemsLoaded := row.toDomain(), row.Items != nil
						pending.add(func() { notify(ctx, order, itemsLoaded) })
					}
				}
				return
			}
			for _, row := range rows {
				notify(ctx, row.toDomain(), row.Items != nil)
			}
		})
}

func createdOrders(dest any) []OrderRow {
	switch v := dest.(type) {
	case *OrderRow:
		return []OrderRow{*v}
	case []OrderRow:
		return v
	case *[]OrderRow:
		return *v
	}
	return nil
}

// pendingNotifications holds announcements deferred to a transaction commit
type pendingNotifications struct {
	mu  sync.Mutex
	fns []func()
}

type pendingKey struct{}

func withPending(ctx context.Context, p *pendingNotifications) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, pendingKey{}, p)
}

func pendingFrom(ctx context.Context) *pendingNotifications {
	p, _ := ctx.Value(pendingKey{}).(*pendingNotifications)
	return p
}

func (p *pendingNotifications) add(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fns = append(p.fns, fn)
}

func (p *pendingNotifications) flush() {
	p.mu.Lock()
	fns := p.fns
	p.fns = nil
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
