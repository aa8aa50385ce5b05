package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOrderCanCancel(t *testing.T) {
	cancellable := []string{
		OrderStatusPending,
		OrderStatusApproved,
		OrderStatusProcessing,
		OrderStatusReturnRequested,
	}
	for _, status := range cancellable {
		o := &Order{OrderStatus: status}
		assert.True(t, o.CanCancel(), "expected %s to be cancellable", status)
	}

	final := []string{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled}
	for _, status := range final {
		o := &Order{OrderStatus: status}
		assert.False(t, o.CanCancel(), "expected %s to block cancellation", status)
	}
}

func TestOrderApprove(t *testing.T) {
	staffID := uuid.New()
	o := &Order{OrderStatus: OrderStatusPending, ApprovalStatus: ApprovalPending}

	o.Approve(staffID, "looks fine")

	assert.Equal(t, ApprovalApproved, o.ApprovalStatus)
	assert.Equal(t, OrderStatusProcessing, o.OrderStatus)
	assert.Equal(t, staffID, *o.StaffID)
	assert.Equal(t, "looks fine", o.StaffNotes)
	assert.NotNil(t, o.ApprovedAt)
	assert.True(t, o.IsApproved())
	assert.False(t, o.IsPending())
}

func TestOrderReject(t *testing.T) {
	staffID := uuid.New()
	o := &Order{OrderStatus: OrderStatusPending, ApprovalStatus: ApprovalPending}

	o.Reject(staffID, "address unverifiable")

	assert.Equal(t, ApprovalRejected, o.ApprovalStatus)
	assert.Equal(t, OrderStatusCancelled, o.OrderStatus)
	assert.NotNil(t, o.RejectedAt)
	assert.False(t, o.IsApproved())
}
