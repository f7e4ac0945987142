package stub

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavesystem/leavectl/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(NewStore(), "test-secret", logger.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "password123"})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "employee", "password": "wrong"})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLifecycleEnforcedServerSide(t *testing.T) {
	srv := newTestServer(t)
	empToken := login(t, srv, "employee")
	mgrToken := login(t, srv, "manager")
	hrToken := login(t, srv, "hr")

	resp, created := call(t, srv, http.MethodPost, "/LeaveRequest", empToken, map[string]string{
		"fromDate":  "2025-03-01",
		"toDate":    "2025-03-03",
		"leaveType": "Annual",
		"reason":    "trip",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Pending", created["status"])

	// HR cannot act while the request is still Pending.
	resp, body := call(t, srv, http.MethodPost, "/hr/approve/"+id, hrToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["message"], "Pending")

	resp, _ = call(t, srv, http.MethodPost, "/manager/"+id+"/approve", mgrToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Repeating the manager approval is stale now.
	resp, _ = call(t, srv, http.MethodPost, "/manager/"+id+"/approve", mgrToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, pending := call(t, srv, http.MethodGet, "/hr/pending-requests", hrToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, pending["count"])

	resp, _ = call(t, srv, http.MethodPost, "/hr/reject/"+id, hrToken, map[string]string{"reason": "conflicts with schedule"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/LeaveRequest/my", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+empToken)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var mine []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Rejected", mine[0]["status"])
	assert.Equal(t, "conflicts with schedule", mine[0]["rejectionReason"])

	// Both actors left their reference: the manager who first-approved and
	// the HR user who rejected.
	assert.NotEmpty(t, mine[0]["managerId"])
	assert.NotEmpty(t, mine[0]["hrId"])
}

func TestRejectRequiresReason(t *testing.T) {
	srv := newTestServer(t)
	empToken := login(t, srv, "employee")
	mgrToken := login(t, srv, "manager")

	resp, created := call(t, srv, http.MethodPost, "/LeaveRequest", empToken, map[string]string{
		"fromDate":  "2025-04-01",
		"toDate":    "2025-04-02",
		"leaveType": "Sick",
		"reason":    "flu",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)

	resp, body := call(t, srv, http.MethodPost, "/manager/"+id+"/reject", mgrToken, map[string]string{"reason": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "a reason is required", body["message"])

	// A real reason goes through, and the rejecting manager is recorded.
	resp, _ = call(t, srv, http.MethodPost, "/manager/"+id+"/reject", mgrToken, map[string]string{"reason": "coverage gap"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/LeaveRequest/my", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+empToken)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var mine []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "coverage gap", mine[0]["rejectionReason"])
	assert.NotEmpty(t, mine[0]["managerId"])
}

func TestRoleGates(t *testing.T) {
	srv := newTestServer(t)
	empToken := login(t, srv, "employee")

	resp, _ := call(t, srv, http.MethodGet, "/manager/pending", empToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodGet, "/hr/All-users", empToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, srv, http.MethodGet, "/LeaveRequest/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserListingPagination(t *testing.T) {
	srv := newTestServer(t)
	hrToken := login(t, srv, "hr")

	resp, body := call(t, srv, http.MethodGet, "/hr/All-users?page=1&pageSize=2&sortBy=name", hrToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["total"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}
