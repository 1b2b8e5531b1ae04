package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderDisplayState_Projection(t *testing.T) {
	cases := []struct {
		name      string
		status    OrderStatus
		confirmed bool
		want      OrderDisplayState
	}{
		{"ожидает планировщика", OrderStatusPendingRPApproval, false, DisplayPendingRPApproval},
		{"одобрен, не подтвержден", OrderStatusApproved, false, DisplaySubmittedToProvider},
		{"одобрен и подтвержден", OrderStatusApproved, true, DisplayApproved},
		{"отклонен", OrderStatusRejected, false, DisplayRejected},
		// Подтверждение не влияет на отклоненный заказ.
		{"отклонен с подтверждением", OrderStatusRejected, true, DisplayRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := &Order{Status: tc.status, ProviderConfirmed: tc.confirmed}
			assert.Equal(t, tc.want, order.DisplayState())
		})
	}
}

func TestRequestStatus_Helpers(t *testing.T) {
	assert.True(t, RequestStatusOrdered.IsTerminal())
	assert.True(t, RequestStatusRejected.IsTerminal())
	assert.False(t, RequestStatusBidding.IsTerminal())

	assert.True(t, RequestStatusApprovedForBidding.Biddable())
	assert.True(t, RequestStatusBidding.Biddable())
	assert.False(t, RequestStatusDraft.Biddable())
	assert.False(t, RequestStatusOrdered.Biddable())
}

func TestNormalizeRole(t *testing.T) {
	for raw, want := range map[string]Role{
		"SUPPLIER":      RoleSupplier,
		"supplier":      RoleSupplier,
		"ROLE_SUPPLIER": RoleSupplier,
		" requester ":   RoleRequester,
	} {
		role, ok := NormalizeRole(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, role)
	}

	_, ok := NormalizeRole("MANAGER")
	assert.False(t, ok)
}
