// Package recipient resolves where new-order notifications are sent.
package recipient

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"order-fulfillment/order-processing/types"
)

// SettingsStore returns the notification address configured for the shop.
// An empty string with a nil error means the field is not set.
type SettingsStore interface {
	OrdersEmail(ctx context.Context) (string, error)
}

// FallbackObserver is notified whenever the configured fallback is used
type FallbackObserver interface {
	IncOperatorFallback(reason string)
}

// Resolver determines the operator notification address
type Resolver struct {
	settings SettingsStore
	fallback string
	log      *zap.Logger
	observer FallbackObserver
}

func NewResolver(settings SettingsStore, fallback string, log *zap.Logger, observer FallbackObserver) *Resolver {
	return &Resolver{
		settings: settings,
		fallback: strings.TrimSpace(fallback),
		log:      log.Named("recipient"),
		observer: observer,
	}
}

// ResolveOperatorEmail never fails: lookup errors and unusable values fall
// back to the configured default, and an empty result means nobody to notify.
func (r *Resolver) ResolveOperatorEmail(ctx context.Context) string {
	configured, err := r.lookup(ctx)
	if err == nil && configured != "" {
		return configured
	}

	reason := "not_set"
	if err != nil {
		reason = "lookup_failed"
		r.log.Warn("cannot read shop orders email, using fallback",
			zap.Error(&types.SettingsLookupError{Msg: err.Error()}),
			zap.Bool("fallback_configured", r.fallback != ""),
		)
	}
	if r.observer != nil {
		r.observer.IncOperatorFallback(reason)
	}
	if r.fallback == "" {
		r.log.Warn("no operator email configured")
	}
	return r.fallback
}

func (r *Resolver) lookup(ctx context.Context) (address string, err error) {
	if r.settings == nil {
		return "", nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			address = ""
			err = &types.SettingsLookupError{Msg: "settings lookup panicked"}
		}
	}()

	value, err := r.settings.OrdersEmail(ctx)
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return "", &types.SettingsLookupError{Msg: "malformed orders email: " + err.Error()}
	}
	return value, nil
}
