package worklist

import (
	"context"
	"fmt"
	"sync"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
	"github.com/leavesystem/leavectl/pkg/logger"
)

// Fetcher loads the current worklist from the backend.
type Fetcher func(ctx context.Context) ([]domain.LeaveRequest, error)

// TransitionCall issues one transition for a request id. The reason, when
// the action needs one, is bound by the caller before handing the call in.
type TransitionCall func(ctx context.Context, id string) error

// Controller owns one role's worklist: the fetched rows, the per-row
// in-flight markers, and the refetch-after-transition discipline. Rows are
// never mutated optimistically; only a refetch changes what is shown.
type Controller struct {
	role  domain.Role
	fetch Fetcher
	log   *logger.Logger

	mu       sync.Mutex
	rows     []domain.LeaveRequest
	inflight map[string]bool
}

// NewController creates a worklist controller for the given role.
func NewController(role domain.Role, fetch Fetcher, log *logger.Logger) *Controller {
	return &Controller{
		role:     role,
		fetch:    fetch,
		log:      log,
		inflight: make(map[string]bool),
	}
}

// Refresh replaces the rows with the backend's current truth. On failure
// the previous rows stay visible.
func (c *Controller) Refresh(ctx context.Context) error {
	rows, err := c.fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh worklist: %w", err)
	}
	c.mu.Lock()
	c.rows = rows
	c.mu.Unlock()
	return nil
}

// Rows returns a copy of the current rows.
func (c *Controller) Rows() []domain.LeaveRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.LeaveRequest, len(c.rows))
	copy(out, c.rows)
	return out
}

// Actions returns the actions offered for a row, per the lifecycle table.
// Rows with an action in flight offer nothing until it completes.
func (c *Controller) Actions(id string) []domain.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[id] {
		return nil
	}
	for _, r := range c.rows {
		if r.ID == id {
			return domain.AvailableActions(c.role, r.Status)
		}
	}
	return nil
}

// Act performs one transition on one row. It rejects actions the lifecycle
// table does not allow for this role and row status, refuses to start while
// another call for the same row is in flight, and refetches on success so
// the visible state is always the backend's. On failure the rows are left
// exactly as they were.
func (c *Controller) Act(ctx context.Context, id string, action domain.Action, call TransitionCall) error {
	c.mu.Lock()
	row, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		// The row already left this worklist; a stale invocation is not an
		// error worth acting on.
		return apperrors.NotFound("request is no longer in this worklist")
	}
	if err := domain.CanTransition(c.role, row.Status, action); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.inflight[id] {
		c.mu.Unlock()
		return apperrors.Conflict("an action for this request is already in progress")
	}
	c.inflight[id] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, id)
		c.mu.Unlock()
	}()

	if err := c.call(ctx, id, action, call); err != nil {
		return err
	}

	// Only a full refetch moves the row; a refetch failure after a committed
	// transition still surfaces, with the stale rows left visible.
	if err := c.Refresh(ctx); err != nil {
		c.log.Warn().Err(err).Str("request_id", id).Msg("Transition committed but refetch failed")
		return err
	}
	return nil
}

func (c *Controller) call(ctx context.Context, id string, action domain.Action, call TransitionCall) error {
	if err := call(ctx, id); err != nil {
		c.log.Warn().
			Err(err).
			Str("request_id", id).
			Str("action", string(action)).
			Msg("Transition rejected")
		return err
	}
	c.log.Info().
		Str("request_id", id).
		Str("action", string(action)).
		Str("role", string(c.role)).
		Msg("Transition committed")
	return nil
}

func (c *Controller) find(id string) (domain.LeaveRequest, bool) {
	for _, r := range c.rows {
		if r.ID == id {
			return r, true
		}
	}
	return domain.LeaveRequest{}, false
}
