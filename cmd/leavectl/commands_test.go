package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavesystem/leavectl/internal/client"
	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/internal/session"
	"github.com/leavesystem/leavectl/internal/stub"
	"github.com/leavesystem/leavectl/pkg/apperrors"
	"github.com/leavesystem/leavectl/pkg/logger"
)

// newTestApp builds an app over its own transport and session directory,
// logged in as the given seeded user, with stdin canned for prompts.
func newTestApp(t *testing.T, srvURL, username, stdin string) (*app, *bytes.Buffer) {
	t.Helper()
	log := logger.Nop()
	httpClient := client.NewHTTPClient(srvURL, log)
	auth := client.NewAuthClient(httpClient)
	out := &bytes.Buffer{}
	a := &app{
		log:     log,
		sess:    session.NewStore(t.TempDir(), auth, httpClient, log),
		auth:    auth,
		leave:   client.NewLeaveClient(httpClient),
		manager: client.NewManagerClient(httpClient),
		hr:      client.NewHRClient(httpClient),
		out:     out,
		in:      bufio.NewReader(strings.NewReader(stdin)),
	}
	require.NoError(t, a.sess.Initialize())
	if _, err := a.sess.Login(context.Background(), username, "password123"); err != nil {
		t.Fatalf("Login as %s failed: %v", username, err)
	}
	return a, out
}

func seedManagerApproved(t *testing.T, srvURL string) string {
	t.Helper()
	ctx := context.Background()

	employee, _ := newTestApp(t, srvURL, "employee", "")
	req, err := employee.leave.Create(ctx, client.CreateParams{
		FromDate:  "2025-06-02",
		ToDate:    "2025-06-04",
		LeaveType: domain.LeaveTypeAnnual,
		Reason:    "trip",
	})
	require.NoError(t, err)

	manager, _ := newTestApp(t, srvURL, "manager", "")
	require.NoError(t, manager.manager.Approve(ctx, req.ID))
	return req.ID
}

func TestHRApprovePromptsForReason(t *testing.T) {
	srv := httptest.NewServer(stub.NewServer(stub.NewStore(), "test-secret", logger.Nop()).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()
	id := seedManagerApproved(t, srv.URL)

	hr, out := newTestApp(t, srv.URL, "hr", "headcount cleared\n")
	require.NoError(t, hr.cmdHR(ctx, []string{"approve", id}))
	assert.Contains(t, out.String(), "Approve Annual leave for Eli Wells")

	mine, err := newTestAppList(t, srv.URL)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.StatusHRApproved, mine[0].Status)
}

func TestHRApproveBlankPromptIsRefused(t *testing.T) {
	srv := httptest.NewServer(stub.NewServer(stub.NewStore(), "test-secret", logger.Nop()).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()
	id := seedManagerApproved(t, srv.URL)

	hr, _ := newTestApp(t, srv.URL, "hr", "\n")
	err := hr.cmdHR(ctx, []string{"approve", id})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.CodeOf(err))

	// The request did not move.
	pending, err := hr.hr.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.StatusManagerApproved, pending[0].Status)
}

func TestHRApproveReasonFlagSkipsPrompt(t *testing.T) {
	srv := httptest.NewServer(stub.NewServer(stub.NewStore(), "test-secret", logger.Nop()).Handler())
	t.Cleanup(srv.Close)
	ctx := context.Background()
	id := seedManagerApproved(t, srv.URL)

	hr, out := newTestApp(t, srv.URL, "hr", "")
	require.NoError(t, hr.cmdHR(ctx, []string{"approve", "-reason", "headcount cleared", id}))
	assert.NotContains(t, out.String(), "Reason:")
}

func newTestAppList(t *testing.T, srvURL string) ([]domain.LeaveRequest, error) {
	t.Helper()
	employee, _ := newTestApp(t, srvURL, "employee", "")
	return employee.leave.ListMine(context.Background())
}
