package worklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavesystem/leavectl/pkg/apperrors"
)

func TestReasonCaptureCommit(t *testing.T) {
	rc := NewReasonCapture(CaptureReject, "Dana Reed", "Annual")
	assert.False(t, rc.CanCommit(), "empty capture starts disabled")

	rc.Enter("   ")
	assert.False(t, rc.CanCommit(), "whitespace does not enable commit")

	rc.Enter("  conflicts with schedule  ")
	require.True(t, rc.CanCommit())

	reason, err := rc.Commit()
	require.NoError(t, err)
	assert.Equal(t, "conflicts with schedule", reason, "committed value is trimmed")

	// Commit clears the capture.
	assert.False(t, rc.CanCommit())
}

func TestReasonCaptureBlankCommitRefused(t *testing.T) {
	rc := NewReasonCapture(CaptureApprove, "Dana Reed", "Sick")
	rc.Enter("\t\n ")
	_, err := rc.Commit()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))
}

func TestReasonCaptureCancelDiscards(t *testing.T) {
	rc := NewReasonCapture(CaptureReject, "Dana Reed", "Annual")
	rc.Enter("half-typed thou")
	rc.Cancel()

	assert.False(t, rc.CanCommit())
	_, err := rc.Commit()
	assert.Error(t, err, "cancelled text must not be committable")
}

func TestReasonCaptureTitle(t *testing.T) {
	assert.Equal(t, "Reject Annual leave for Dana Reed",
		NewReasonCapture(CaptureReject, "Dana Reed", "Annual").Title())
	assert.Equal(t, "Approve Sick leave for Avery Quinn",
		NewReasonCapture(CaptureApprove, "Avery Quinn", "Sick").Title())
}
