package worklist

import (
	"fmt"
	"strings"

	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// CaptureMode distinguishes the two reason-bearing confirmations.
type CaptureMode string

const (
	CaptureApprove CaptureMode = "approve"
	CaptureReject  CaptureMode = "reject"
)

// ReasonCapture collects a mandatory justification before a reject or
// approve-with-reason commits. It is a pure interaction: it holds the
// entered text and validates it, and the caller composes the result with a
// transition call. Cancel discards without side effects.
type ReasonCapture struct {
	Mode          CaptureMode
	RequesterName string
	LeaveType     string

	text string
}

// NewReasonCapture opens a capture for one request's display metadata.
func NewReasonCapture(mode CaptureMode, requesterName, leaveType string) *ReasonCapture {
	return &ReasonCapture{Mode: mode, RequesterName: requesterName, LeaveType: leaveType}
}

// Title is the confirmation heading shown above the input.
func (rc *ReasonCapture) Title() string {
	verb := "Approve"
	if rc.Mode == CaptureReject {
		verb = "Reject"
	}
	return fmt.Sprintf("%s %s leave for %s", verb, rc.LeaveType, rc.RequesterName)
}

// Enter records the text as typed. The raw value is kept so a commit can
// trim it exactly once.
func (rc *ReasonCapture) Enter(text string) {
	rc.text = text
}

// CanCommit reports whether the commit control is enabled: the entered
// text must be non-empty after trimming.
func (rc *ReasonCapture) CanCommit() bool {
	return strings.TrimSpace(rc.text) != ""
}

// Commit returns the trimmed reason and clears the capture. Committing
// blank text is refused.
func (rc *ReasonCapture) Commit() (string, error) {
	reason := strings.TrimSpace(rc.text)
	if reason == "" {
		return "", apperrors.InvalidInput("reason", "a reason is required")
	}
	rc.text = ""
	return reason, nil
}

// Cancel discards the entered text.
func (rc *ReasonCapture) Cancel() {
	rc.text = ""
}
