package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReorderWarehouseApprove(t *testing.T) {
	staffID := uuid.New()
	r := &ReorderRequest{QuantityRequested: 100, Status: ReorderStatusPending}

	r.WarehouseApprove(staffID, 80, "supplier cap")

	assert.Equal(t, ReorderStatusApproved, r.Status)
	assert.Equal(t, staffID, *r.WarehouseStaffID)
	assert.Equal(t, 80, *r.QuantityApproved)
	assert.NotNil(t, r.WarehouseApprovedAt)
	assert.True(t, r.IsApproved())
}

func TestReorderAdminApprove(t *testing.T) {
	r := &ReorderRequest{QuantityRequested: 100, Status: ReorderStatusPending}

	r.AdminApprove()

	assert.Equal(t, ReorderStatusApproved, r.Status)
	assert.NotNil(t, r.ApprovedAt)
	assert.Nil(t, r.QuantityApproved)
	assert.Equal(t, 100, r.QuantityToAdd())
}

func TestReorderWarehouseReject(t *testing.T) {
	r := &ReorderRequest{Status: ReorderStatusPending}

	r.WarehouseReject(uuid.New(), "no supplier")

	assert.Equal(t, ReorderStatusCancelled, r.Status)
	assert.NotNil(t, r.WarehouseRejectedAt)
	assert.False(t, r.IsPending())
}

func TestReorderQuantityToAdd(t *testing.T) {
	r := &ReorderRequest{QuantityRequested: 100}
	assert.Equal(t, 100, r.QuantityToAdd())

	approved := 80
	r.QuantityApproved = &approved
	assert.Equal(t, 80, r.QuantityToAdd())
}

func TestReorderMarkCompleted(t *testing.T) {
	r := &ReorderRequest{Status: ReorderStatusApproved}

	r.MarkCompleted()

	assert.True(t, r.IsCompleted())
	assert.NotNil(t, r.CompletedAt)
}
