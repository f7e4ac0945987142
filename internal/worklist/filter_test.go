package worklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leavesystem/leavectl/internal/domain"
)

func sampleRequests() []domain.LeaveRequest {
	return []domain.LeaveRequest{
		{ID: "1", RequesterName: "carol", LeaveType: "Annual", Status: domain.StatusPending, CreatedAt: "2025-01-03T09:00:00Z"},
		{ID: "2", RequesterName: "Bob", LeaveType: "Sick", Status: domain.StatusRejected, CreatedAt: "2025-01-01T09:00:00Z"},
		{ID: "3", RequesterName: "", LeaveType: "Annual", Status: domain.StatusManagerApproved, CreatedAt: "2025-01-02T09:00:00Z"},
		{ID: "4", RequesterName: "alice", LeaveType: "Temporary", Status: domain.StatusPending, CreatedAt: "2025-01-04T09:00:00Z"},
	}
}

func ids(in []domain.LeaveRequest) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		out = append(out, r.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	in := sampleRequests()

	assert.Equal(t, []string{"1", "3"}, ids(Apply(in, Filter{LeaveType: "Annual"})))

	pending := domain.StatusPending
	assert.Equal(t, []string{"1", "4"}, ids(Apply(in, Filter{Status: &pending})))

	assert.Equal(t, []string{"1"}, ids(Apply(in, Filter{LeaveType: "Annual", Status: &pending})))

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Apply(in, Filter{})))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sampleRequests()
	snapshot := sampleRequests()

	_ = Apply(in, Filter{LeaveType: "Sick"})
	_ = SortRequests(in, SortByName)

	assert.Equal(t, snapshot, in)
}

func TestFilterSortIdempotent(t *testing.T) {
	in := sampleRequests()
	f := Filter{LeaveType: "Annual"}

	first := SortRequests(Apply(in, f), SortRecentFirst)
	second := SortRequests(Apply(in, f), SortRecentFirst)
	assert.Equal(t, first, second)

	// Re-applying to its own output changes nothing either.
	again := SortRequests(Apply(first, f), SortRecentFirst)
	assert.Equal(t, first, again)
}

func TestSortRequests(t *testing.T) {
	in := sampleRequests()

	assert.Equal(t, []string{"4", "1", "3", "2"}, ids(SortRequests(in, SortRecentFirst)))
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(SortRequests(in, SortOldestFirst)))

	// Case-insensitive by display name, empty names first.
	assert.Equal(t, []string{"3", "4", "2", "1"}, ids(SortRequests(in, SortByName)))

	// An unknown key leaves the order untouched.
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(SortRequests(in, SortKey("bogus"))))
}

func TestSortByNameStableOnTies(t *testing.T) {
	in := []domain.LeaveRequest{
		{ID: "a", RequesterName: "Dana"},
		{ID: "b", RequesterName: "dana"},
		{ID: "c", RequesterName: "DANA"},
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(SortRequests(in, SortByName)))
}

func TestApplyUsers(t *testing.T) {
	users := []domain.User{
		{ID: "1", Name: "A", Department: "Engineering", Role: domain.RoleEmployee, IsActive: true},
		{ID: "2", Name: "B", Department: "Engineering", Role: domain.RoleManager, IsActive: false},
		{ID: "3", Name: "C", Department: "Finance", Role: domain.RoleEmployee, IsActive: true},
	}

	got := ApplyUsers(users, UserFilter{Department: "Engineering"})
	require.Len(t, got, 2)

	got = ApplyUsers(users, UserFilter{Department: "Engineering", ActiveOnly: true})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = ApplyUsers(users, UserFilter{Role: domain.RoleEmployee})
	require.Len(t, got, 2)
}

func TestLeaveTypes(t *testing.T) {
	got := LeaveTypes(sampleRequests())
	assert.Equal(t, []string{"Annual", "Sick", "Temporary"}, got)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name               string
		total, page, size  int
		wantPage, wantPcnt int
	}{
		{"first page", 45, 1, 20, 1, 3},
		{"middle page", 45, 2, 20, 2, 3},
		{"exact multiple", 40, 2, 20, 2, 2},
		{"page past end clamps", 45, 9, 20, 3, 3},
		{"page below start clamps", 45, 0, 20, 1, 3},
		{"empty listing still has one page", 0, 5, 20, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Paginate(tt.total, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, w.Page)
			assert.Equal(t, tt.wantPcnt, w.PageCount)
		})
	}
}
