package worklist

import (
	"sort"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
)

// Filter is the client-side predicate set for request worklists. Zero
// fields match everything.
type Filter struct {
	LeaveType string
	Status    *domain.Status
}

// Apply returns the requests matching the filter. The input slice is never
// mutated; the result is always a fresh slice.
func Apply(in []domain.LeaveRequest, f Filter) []domain.LeaveRequest {
	out := make([]domain.LeaveRequest, 0, len(in))
	for _, r := range in {
		if f.LeaveType != "" && r.LeaveType != f.LeaveType {
			continue
		}
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// UserFilter is the predicate set for the administrative user listing.
type UserFilter struct {
	Department string
	Role       domain.Role
	ActiveOnly bool
}

// ApplyUsers returns the users matching the filter without mutating the
// input.
func ApplyUsers(in []domain.User, f UserFilter) []domain.User {
	out := make([]domain.User, 0, len(in))
	for _, u := range in {
		if f.Department != "" && u.Department != f.Department {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.ActiveOnly && !u.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SortKey selects a worklist ordering.
type SortKey string

const (
	SortRecentFirst SortKey = "recent"
	SortOldestFirst SortKey = "oldest"
	SortByName      SortKey = "name"
)

// SortRequests returns a sorted copy of in. The sort is stable; the name
// key compares display names case-insensitively with empty names first.
// Creation timestamps are ISO-ordered strings in every backend version, so
// lexical comparison gives chronological order.
func SortRequests(in []domain.LeaveRequest, key SortKey) []domain.LeaveRequest {
	out := make([]domain.LeaveRequest, len(in))
	copy(out, in)

	switch key {
	case SortRecentFirst:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt > out[j].CreatedAt
		})
	case SortOldestFirst:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt < out[j].CreatedAt
		})
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].RequesterName) < strings.ToLower(out[j].RequesterName)
		})
	}
	return out
}

// LeaveTypes returns the distinct leave types present in the collection,
// in first-seen order, for building filter options.
func LeaveTypes(in []domain.LeaveRequest) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, r := range in {
		if r.LeaveType == "" {
			continue
		}
		if _, ok := seen[r.LeaveType]; ok {
			continue
		}
		seen[r.LeaveType] = struct{}{}
		out = append(out, r.LeaveType)
	}
	return out
}
