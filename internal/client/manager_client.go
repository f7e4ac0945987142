package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// ManagerClient covers the first-line approval endpoints.
type ManagerClient struct {
	client *HTTPClient
}

// NewManagerClient creates a manager worklist client over the shared
// transport.
func NewManagerClient(client *HTTPClient) *ManagerClient {
	return &ManagerClient{client: client}
}

// Pending returns the requests awaiting first-line approval.
func (c *ManagerClient) Pending(ctx context.Context) ([]domain.LeaveRequest, error) {
	var resp []wireLeaveRequest
	if err := c.client.Get(ctx, "/manager/pending", &resp); err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requestsToDomain(resp)
}

// Approve gives first-line approval to a pending request.
func (c *ManagerClient) Approve(ctx context.Context, id string) error {
	if err := c.client.Post(ctx, "/manager/"+id+"/approve", nil, nil); err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}
	return nil
}

// Reject rejects a pending request. The reason is mandatory; it is trimmed
// and the trimmed value is what goes on the wire.
func (c *ManagerClient) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.InvalidInput("reason", "rejection reason is required")
	}
	body := map[string]string{"reason": reason}
	if err := c.client.Post(ctx, "/manager/"+id+"/reject", body, nil); err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	return nil
}

// Cancel withdraws a request on behalf of the managing authority.
func (c *ManagerClient) Cancel(ctx context.Context, id string) error {
	if err := c.client.Post(ctx, "/manager/"+id+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	return nil
}
