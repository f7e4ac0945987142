package domain

import (
	"fmt"

	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// Action is a status transition an actor can request on an existing record.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// transition is one legal row of the lifecycle table.
type transition struct {
	from   Status
	action Action
	actor  Role
	to     Status
}

// transitions is the single authoritative lifecycle table. Navigation sets,
// offered row actions, client-side guards, and the stub backend all derive
// from it; adding a transition is a data change here, nowhere else.
var transitions = []transition{
	{StatusPending, ActionApprove, RoleManager, StatusManagerApproved},
	{StatusPending, ActionReject, RoleManager, StatusRejected},
	{StatusPending, ActionCancel, RoleManager, StatusCancelled},
	{StatusManagerApproved, ActionCancel, RoleManager, StatusCancelled},
	{StatusManagerApproved, ActionApprove, RoleHR, StatusHRApproved},
	{StatusManagerApproved, ActionReject, RoleHR, StatusRejected},
	{StatusManagerApproved, ActionCancel, RoleHR, StatusCancelled},
}

// CanTransition reports whether role may perform action on a request in the
// from status. A terminal status, or a live status the role acts on at a
// different stage, yields a conflict: the request moved and the caller is
// stale. A role that never performs the action at all is forbidden.
func CanTransition(role Role, from Status, action Action) error {
	if from.IsTerminal() {
		return apperrors.Conflict(fmt.Sprintf("cannot %s a request with status '%s'", action, from))
	}
	actsSomewhere := false
	for _, t := range transitions {
		if t.action != action || t.actor != role {
			continue
		}
		if t.from == from {
			return nil
		}
		actsSomewhere = true
	}
	if actsSomewhere {
		return apperrors.Conflict(fmt.Sprintf("cannot %s a request with status '%s'", action, from))
	}
	return apperrors.Forbidden(fmt.Sprintf("role %s may not %s a request with status '%s'", role, action, from))
}

// NextStatus returns the status a legal (from, action) pair lands in.
// The second result is false when no actor could make that move.
func NextStatus(from Status, action Action) (Status, bool) {
	for _, t := range transitions {
		if t.from == from && t.action == action {
			return t.to, true
		}
	}
	return "", false
}

// RequiresReason reports whether the transition must carry a non-blank
// justification. Rejections always do; the HR approval reason is optional
// and everything else carries none.
func RequiresReason(role Role, action Action) bool {
	return action == ActionReject
}

// AvailableActions returns the actions role may take on a request in the
// given status, in table order. Terminal statuses return nil, which is what
// keeps action controls off rows that can no longer move.
func AvailableActions(role Role, status Status) []Action {
	if status.IsTerminal() {
		return nil
	}
	var actions []Action
	for _, t := range transitions {
		if t.from == status && t.actor == role {
			actions = append(actions, t.action)
		}
	}
	return actions
}
