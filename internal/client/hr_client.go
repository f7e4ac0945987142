package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// HRClient covers final approval and the administrative user/department
// endpoints.
type HRClient struct {
	client *HTTPClient
}

// NewHRClient creates an HR client over the shared transport.
func NewHRClient(client *HTTPClient) *HRClient {
	return &HRClient{client: client}
}

type hrPendingResponse struct {
	Count         int                `json:"count"`
	LeaveRequests []wireLeaveRequest `json:"leaveRequests"`
}

// PendingRequests returns the manager-approved requests awaiting final
// approval.
func (c *HRClient) PendingRequests(ctx context.Context) ([]domain.LeaveRequest, error) {
	var resp hrPendingResponse
	if err := c.client.Get(ctx, "/hr/pending-requests", &resp); err != nil {
		return nil, fmt.Errorf("failed to list HR pending requests: %w", err)
	}
	return requestsToDomain(resp.LeaveRequests)
}

// Approve gives final approval. The reason is optional; when present it is
// trimmed before transmission.
func (c *HRClient) Approve(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": strings.TrimSpace(reason)}
	if err := c.client.Post(ctx, "/hr/approve/"+id, body, nil); err != nil {
		return fmt.Errorf("failed to approve request: %w", err)
	}
	return nil
}

// Reject overturns a manager approval. The reason is mandatory.
func (c *HRClient) Reject(ctx context.Context, id, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperrors.InvalidInput("reason", "rejection reason is required")
	}
	body := map[string]string{"reason": reason}
	if err := c.client.Post(ctx, "/hr/reject/"+id, body, nil); err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	return nil
}

// Cancel withdraws a manager-approved request.
func (c *HRClient) Cancel(ctx context.Context, id string) error {
	if err := c.client.Post(ctx, "/hr/"+id+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("failed to cancel request: %w", err)
	}
	return nil
}

// UserQuery is the paging and filter window for the administrative user
// listing. Zero values are omitted from the query string.
type UserQuery struct {
	Page         int
	PageSize     int
	SortBy       string
	Desc         bool
	IsActive     *bool
	Role         string
	DepartmentID int
}

type listUsersResponse struct {
	Items []wireUser `json:"items"`
	Total int        `json:"total"`
}

// ListUsers returns one page of the user listing plus the backend's total
// count, which the presentation layer trusts for page arithmetic.
func (c *HRClient) ListUsers(ctx context.Context, q UserQuery) ([]domain.User, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.SortBy == "" {
		q.SortBy = "id"
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	params.Set("sortBy", q.SortBy)
	params.Set("desc", strconv.FormatBool(q.Desc))
	if q.IsActive != nil {
		params.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	if q.Role != "" {
		params.Set("role", q.Role)
	}
	if q.DepartmentID != 0 {
		params.Set("departmentId", strconv.Itoa(q.DepartmentID))
	}

	var resp listUsersResponse
	if err := c.client.Get(ctx, "/hr/All-users?"+params.Encode(), &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(resp.Items))
	for _, w := range resp.Items {
		u, err := w.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("listing returned malformed user: %w", err)
		}
		users = append(users, u)
	}
	return users, resp.Total, nil
}

// Departments returns the department reference list.
func (c *HRClient) Departments(ctx context.Context) ([]domain.Department, error) {
	var resp []wireDepartment
	if err := c.client.Get(ctx, "/hr/department-list", &resp); err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	out := make([]domain.Department, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.toDomain())
	}
	return out, nil
}
