package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoGatewayLifecycle(t *testing.T) {
	gw := NewDemoGateway()
	ctx := context.Background()

	resp, err := gw.Initiate(ctx, &InitiateRequest{
		PurchaseOrderID:   "assessment-1",
		Amount:            530000,
		PurchaseOrderName: "Bluebook-Tax-assessment-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Pidx)
	assert.Contains(t, resp.PaymentURL, resp.Pidx)
	assert.Equal(t, StatusPending, resp.Status)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), resp.ExpiresAt, time.Minute)

	// Pending until completed explicitly; no transaction id yet.
	lookup, err := gw.Lookup(ctx, resp.Pidx)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, lookup.Status)
	assert.Equal(t, int64(530000), lookup.TotalAmount)
	assert.Empty(t, lookup.TransactionID)

	require.NoError(t, gw.Complete(resp.Pidx))

	lookup, err = gw.Lookup(ctx, resp.Pidx)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, lookup.Status)
	assert.NotEmpty(t, lookup.TransactionID)

	// The transaction id is stable across repeated lookups.
	again, err := gw.Lookup(ctx, resp.Pidx)
	require.NoError(t, err)
	assert.Equal(t, lookup.TransactionID, again.TransactionID)
}

func TestDemoGatewayUnknownReference(t *testing.T) {
	gw := NewDemoGateway()

	_, err := gw.Lookup(context.Background(), "PIDX-unknown")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	err = gw.Complete("PIDX-unknown")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestDemoGatewayReferencesAreUnique(t *testing.T) {
	gw := NewDemoGateway()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		resp, err := gw.Initiate(ctx, &InitiateRequest{Amount: 100})
		require.NoError(t, err)
		assert.False(t, seen[resp.Pidx], "duplicate pidx %s", resp.Pidx)
		seen[resp.Pidx] = true
	}
}
