package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// Role is the closed set of principal roles known to the client.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
)

// ParseRole normalizes a wire role value. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EMPLOYEE":
		return RoleEmployee, nil
	case "MANAGER":
		return RoleManager, nil
	case "HR":
		return RoleHR, nil
	}
	return "", apperrors.InvalidInput("role", "unknown role '"+s+"'")
}

// Status is the canonical request status. Historical backend versions spell
// these several ways; ParseStatus folds every observed variant into this set.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusManagerApproved Status = "ManagerApproved"
	StatusHRApproved      Status = "HRApproved"
	StatusRejected        Status = "Rejected"
	StatusCancelled       Status = "Cancelled"
)

// statusByCode maps the numeric status codes one backend version emits.
var statusByCode = map[int]Status{
	0: StatusPending,
	1: StatusManagerApproved,
	2: StatusHRApproved,
	3: StatusRejected,
	4: StatusCancelled,
}

// ParseStatus normalizes a wire status: canonical spellings, underscore
// variants (Manager_Approved, HR_Approved), case drift, and numeric codes.
func ParseStatus(s string) (Status, error) {
	if code, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if st, ok := statusByCode[code]; ok {
			return st, nil
		}
		return "", apperrors.InvalidInput("status", "unknown status code "+s)
	}

	folded := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	switch folded {
	case "pending":
		return StatusPending, nil
	case "managerapproved":
		return StatusManagerApproved, nil
	case "hrapproved":
		return StatusHRApproved, nil
	case "rejected":
		return StatusRejected, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	}
	return "", apperrors.InvalidInput("status", "unknown status '"+s+"'")
}

// IsTerminal reports whether no further transition is valid from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusHRApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Known leave types. The backend also accepts free text, so these are
// suggestions rather than a closed set.
const (
	LeaveTypeAnnual    = "Annual"
	LeaveTypeSick      = "Sick"
	LeaveTypeTemporary = "Temporary"
)

const dateLayout = "2006-01-02"

// ParseDate validates a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("date", "invalid date format, expected YYYY-MM-DD")
	}
	return t, nil
}

// User is the authenticated principal or an administrative listing row.
type User struct {
	ID         string
	Username   string
	Name       string
	Email      string
	Role       Role
	Department string
	ManagerID  string
	IsActive   bool
	CreatedAt  string
}

// LeaveRequest is the canonical request record after wire normalization.
type LeaveRequest struct {
	ID              string
	RequesterID     string
	RequesterName   string
	LeaveType       string
	FromDate        string // YYYY-MM-DD
	ToDate          string // YYYY-MM-DD
	Reason          string
	Status          Status
	CreatedAt       string
	RejectionReason string
	ManagerID       string
	HRID            string
}

// Department is read-only reference data for filtering and display.
type Department struct {
	ID          int
	Name        string
	UserCount   int
	ManagerName string
}

// ValidateNew checks a request before it is submitted: known date format,
// from on or before to, and a non-blank reason. The backend revalidates;
// this is the client-side fast fail.
func ValidateNew(leaveType, fromDate, toDate, reason string) error {
	if strings.TrimSpace(leaveType) == "" {
		return apperrors.InvalidInput("leaveType", "leave type is required")
	}
	from, err := ParseDate(fromDate)
	if err != nil {
		return apperrors.InvalidInput("fromDate", "invalid date format, expected YYYY-MM-DD")
	}
	to, err := ParseDate(toDate)
	if err != nil {
		return apperrors.InvalidInput("toDate", "invalid date format, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return apperrors.InvalidInput("toDate", "end date cannot be before start date")
	}
	if strings.TrimSpace(reason) == "" {
		return apperrors.InvalidInput("reason", "reason is required")
	}
	return nil
}
