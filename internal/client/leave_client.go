package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
)

// LeaveClient covers the requester-facing leave request endpoints.
type LeaveClient struct {
	client *HTTPClient
}

// NewLeaveClient creates a leave request client over the shared transport.
func NewLeaveClient(client *HTTPClient) *LeaveClient {
	return &LeaveClient{client: client}
}

// CreateParams is the payload for filing a new leave request.
type CreateParams struct {
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	LeaveType string `json:"leaveType"`
	Reason    string `json:"reason"`
}

// Create files a new leave request for the authenticated user. The payload
// is validated client-side first; the backend remains the authority.
func (c *LeaveClient) Create(ctx context.Context, params CreateParams) (*domain.LeaveRequest, error) {
	if err := domain.ValidateNew(params.LeaveType, params.FromDate, params.ToDate, params.Reason); err != nil {
		return nil, err
	}
	params.Reason = strings.TrimSpace(params.Reason)

	var resp wireLeaveRequest
	if err := c.client.Post(ctx, "/LeaveRequest", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}

	req, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("create returned malformed request: %w", err)
	}
	return &req, nil
}

// ListMine returns the authenticated user's own requests.
func (c *LeaveClient) ListMine(ctx context.Context) ([]domain.LeaveRequest, error) {
	var resp []wireLeaveRequest
	if err := c.client.Get(ctx, "/LeaveRequest/my", &resp); err != nil {
		return nil, fmt.Errorf("failed to list own requests: %w", err)
	}
	return requestsToDomain(resp)
}
