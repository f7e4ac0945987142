package stub

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// Account is a stored user plus its password hash.
type Account struct {
	domain.User
	PasswordHash []byte
}

// Store is the in-memory state behind the stub backend. It is the
// authority the client defers to: every transition goes through the same
// lifecycle table the client consults, so an illegal call is rejected here
// even if a client skipped its own guard.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*Account // keyed by username
	departments []domain.Department
	requests    []*domain.LeaveRequest
	now         func() time.Time
}

// NewStore creates a store seeded with the development fixture: one
// employee, one manager, one HR user (password "password123") and two
// departments.
func NewStore() *Store {
	s := &Store{
		accounts: make(map[string]*Account),
		now:      time.Now,
	}
	s.departments = []domain.Department{
		{ID: 1, Name: "Engineering", UserCount: 2, ManagerName: "Morgan Reed"},
		{ID: 2, Name: "People Operations", UserCount: 1, ManagerName: "Avery Quinn"},
	}
	s.seedAccount("employee", "Eli Wells", "eli@example.com", domain.RoleEmployee, "Engineering")
	s.seedAccount("manager", "Morgan Reed", "morgan@example.com", domain.RoleManager, "Engineering")
	s.seedAccount("hr", "Avery Quinn", "avery@example.com", domain.RoleHR, "People Operations")
	return s
}

const seedPassword = "password123"

func (s *Store) seedAccount(username, name, email string, role domain.Role, department string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.accounts[username] = &Account{
		User: domain.User{
			ID:         uuid.New().String(),
			Username:   username,
			Name:       name,
			Email:      email,
			Role:       role,
			Department: department,
			IsActive:   true,
			CreatedAt:  s.now().UTC().Format(time.RFC3339),
		},
		PasswordHash: hash,
	}
}

// Authenticate verifies a username/password pair.
func (s *Store) Authenticate(username, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[username]
	if !ok {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	user := acct.User
	return &user, nil
}

// Register creates a new account.
func (s *Store) Register(username, password, name, email string, role domain.Role, department string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[username]; exists {
		return nil, apperrors.Conflict("username is already taken")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	acct := &Account{
		User: domain.User{
			ID:         uuid.New().String(),
			Username:   username,
			Name:       name,
			Email:      email,
			Role:       role,
			Department: department,
			IsActive:   true,
			CreatedAt:  s.now().UTC().Format(time.RFC3339),
		},
		PasswordHash: hash,
	}
	s.accounts[username] = acct
	user := acct.User
	return &user, nil
}

// UserByID returns the account's user snapshot.
func (s *Store) UserByID(id string) (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.ID == id {
			user := acct.User
			return &user, true
		}
	}
	return nil, false
}

// CreateRequest files a new leave request for the requester.
func (s *Store) CreateRequest(requester *domain.User, leaveType, fromDate, toDate, reason string) (*domain.LeaveRequest, error) {
	if err := domain.ValidateNew(leaveType, fromDate, toDate, reason); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	req := &domain.LeaveRequest{
		ID:            uuid.New().String(),
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		LeaveType:     leaveType,
		FromDate:      fromDate,
		ToDate:        toDate,
		Reason:        strings.TrimSpace(reason),
		Status:        domain.StatusPending,
		CreatedAt:     s.now().UTC().Format(time.RFC3339),
	}
	s.requests = append(s.requests, req)
	return copyRequest(req), nil
}

// RequestsFor returns the requester's own requests, newest first.
func (s *Store) RequestsFor(requesterID string) []domain.LeaveRequest {
	return s.collect(func(r *domain.LeaveRequest) bool {
		return r.RequesterID == requesterID
	})
}

// ByStatus returns all requests in the given status, newest first.
func (s *Store) ByStatus(status domain.Status) []domain.LeaveRequest {
	return s.collect(func(r *domain.LeaveRequest) bool {
		return r.Status == status
	})
}

func (s *Store) collect(keep func(*domain.LeaveRequest) bool) []domain.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LeaveRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// Transition applies one lifecycle action as the given actor. The
// lifecycle table is authoritative: stale or out-of-role calls fail with a
// coded error and the request is left untouched.
func (s *Store) Transition(actor *domain.User, id string, action domain.Action, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var req *domain.LeaveRequest
	for _, r := range s.requests {
		if r.ID == id {
			req = r
			break
		}
	}
	if req == nil {
		return apperrors.NotFound("leave request not found")
	}

	if err := domain.CanTransition(actor.Role, req.Status, action); err != nil {
		return err
	}

	reason = strings.TrimSpace(reason)
	if domain.RequiresReason(actor.Role, action) && reason == "" {
		return apperrors.InvalidInput("reason", "a reason is required")
	}

	next, _ := domain.NextStatus(req.Status, action)
	req.Status = next
	switch actor.Role {
	case domain.RoleManager:
		req.ManagerID = actor.ID
	case domain.RoleHR:
		req.HRID = actor.ID
	}
	if action == domain.ActionReject {
		req.RejectionReason = reason
	}
	return nil
}

// UserPage is one window of the administrative user listing.
type UserPage struct {
	Items []domain.User
	Total int
}

// UserListQuery mirrors the query parameters of the listing endpoint.
type UserListQuery struct {
	Page         int
	PageSize     int
	SortBy       string
	Desc         bool
	IsActive     *bool
	Role         string
	DepartmentID int
}

// ListUsers returns one page of users with the total count of matches.
func (s *Store) ListUsers(q UserListQuery) UserPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []domain.User
	for _, acct := range s.accounts {
		u := acct.User
		if q.IsActive != nil && u.IsActive != *q.IsActive {
			continue
		}
		if q.Role != "" && !strings.EqualFold(string(u.Role), q.Role) {
			continue
		}
		if q.DepartmentID != 0 && s.departmentID(u.Department) != q.DepartmentID {
			continue
		}
		all = append(all, u)
	}

	sort.SliceStable(all, func(i, j int) bool {
		var less bool
		switch q.SortBy {
		case "name":
			less = strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
		case "username":
			less = all[i].Username < all[j].Username
		default:
			less = all[i].ID < all[j].ID
		}
		if q.Desc {
			return !less
		}
		return less
	})

	total := len(all)
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.Page < 1 {
		q.Page = 1
	}
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	return UserPage{Items: all[start:end], Total: total}
}

func (s *Store) departmentID(name string) int {
	for _, d := range s.departments {
		if d.Name == name {
			return d.ID
		}
	}
	return 0
}

// Departments returns the reference department list.
func (s *Store) Departments() []domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Department, len(s.departments))
	copy(out, s.departments)
	return out
}

func copyRequest(r *domain.LeaveRequest) *domain.LeaveRequest {
	c := *r
	return &c
}

// ParseBoolParam parses an optional true/false query value.
func ParseBoolParam(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}
