package workflowclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"order-fulfillment/order-processing/config"
)

func TestOptionsFollowConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Temporal.HostPort = "temporal:7233"
	cfg.Temporal.Namespace = "orders"

	opts := Options(cfg, zap.NewNop())
	assert.Equal(t, "temporal:7233", opts.HostPort)
	assert.Equal(t, "orders", opts.Namespace)
	assert.NotNil(t, opts.Logger)
}
