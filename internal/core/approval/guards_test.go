package approval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/tempo/internal/models"
)

func TestCanApprove(t *testing.T) {
	assert.True(t, CanApprove(models.ApprovalPending).Allowed)

	for _, status := range []string{
		models.ApprovalApproved,
		models.ApprovalRejected,
		models.ApprovalChangesRequested,
	} {
		res := CanApprove(status)
		assert.False(t, res.Allowed, status)
		assert.True(t, errors.Is(res.Error(), models.ErrInvalidTransition), status)
	}
}

func TestCanReject(t *testing.T) {
	res := CanReject(models.ApprovalPending, "missing receipts")
	assert.True(t, res.Allowed)

	res = CanReject(models.ApprovalPending, "  ")
	assert.False(t, res.Allowed)
	assert.True(t, errors.Is(res.Error(), models.ErrMissingReason))

	res = CanReject(models.ApprovalApproved, "too late")
	assert.False(t, res.Allowed)
	assert.True(t, errors.Is(res.Error(), models.ErrInvalidTransition))
}

func TestCanRequestChanges(t *testing.T) {
	assert.True(t, CanRequestChanges(models.ApprovalPending, "split this entry").Allowed)

	res := CanRequestChanges(models.ApprovalPending, "")
	assert.False(t, res.Allowed)
	assert.True(t, errors.Is(res.Error(), models.ErrMissingReason))

	res = CanRequestChanges(models.ApprovalChangesRequested, "again")
	assert.False(t, res.Allowed)
	assert.True(t, errors.Is(res.Error(), models.ErrInvalidTransition))
}

func TestCanResubmit(t *testing.T) {
	assert.True(t, CanResubmit(models.ApprovalChangesRequested).Allowed)

	res := CanResubmit(models.ApprovalPending)
	assert.False(t, res.Allowed)
	assert.True(t, errors.Is(res.Error(), models.ErrInvalidTransition))

	res = CanResubmit(models.ApprovalApproved)
	assert.False(t, res.Allowed)
}
