package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusPrepared.Valid())
	assert.True(t, StatusDelivered.Valid())
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("PENDING").Valid())
}

func seedOrder(t *testing.T, store *fakeOrders) *Order {
	t.Helper()
	o := &Order{ID: "o1", UserID: "u1", Status: StatusPending}
	require.NoError(t, store.Insert(context.Background(), o))
	return o
}

func TestUpdateOrderStatus_RejectsUnknownStatus(t *testing.T) {
	store := newFakeOrders()
	seedOrder(t, store)
	svc := &Service{Products: newFakeProducts(), Orders: store}

	_, err := svc.UpdateOrderStatus(context.Background(), "o1", "shipped")

	var ise *InvalidStatusError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "shipped", ise.Status)
	// the store is never consulted for a bad status
	assert.Equal(t, 0, store.updateCalls)
	st, _, _ := store.GetStatus(context.Background(), "o1")
	assert.Equal(t, StatusPending, st)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	svc := &Service{Products: newFakeProducts(), Orders: newFakeOrders()}

	_, err := svc.UpdateOrderStatus(context.Background(), "missing", "prepared")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateOrderStatus_AnyTransitionAllowed(t *testing.T) {
	store := newFakeOrders()
	seedOrder(t, store)
	svc := &Service{Products: newFakeProducts(), Orders: store}

	// forward, backward and no-op transitions are all accepted
	for _, next := range []string{"prepared", "delivered", "pending", "pending"} {
		o, err := svc.UpdateOrderStatus(context.Background(), "o1", next)
		require.NoError(t, err)
		assert.Equal(t, Status(next), o.Status)
	}
}

func TestUpdateOrderStatus_SameStatusIsIdempotent(t *testing.T) {
	store := newFakeOrders()
	seedOrder(t, store)
	svc := &Service{Products: newFakeProducts(), Orders: store}

	first, err := svc.UpdateOrderStatus(context.Background(), "o1", "prepared")
	require.NoError(t, err)
	second, err := svc.UpdateOrderStatus(context.Background(), "o1", "prepared")
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ID, second.ID)
}
