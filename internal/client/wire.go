package client

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
)

// The backend's wire format has drifted across versions: identifiers arrive
// as numbers or strings, dates as startDate/endDate or fromDate/toDate,
// display names under three different keys, statuses as several spellings
// or a numeric code. Everything in this file exists to fold that history
// into the canonical domain types at this one boundary.

// flexID accepts a JSON string or number and holds it as a string.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexID(s)
	return nil
}

// flexString accepts a JSON string or number (some versions send numeric
// status codes without quotes).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

type wireUser struct {
	ID         flexID `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ManagerID  flexID `json:"managerId"`
	IsActive   *bool  `json:"isActive"`
	CreatedAt  string `json:"createdAt"`
}

func (w wireUser) toDomain() (domain.User, error) {
	role, err := domain.ParseRole(w.Role)
	if err != nil {
		return domain.User{}, err
	}

	name := w.Name
	if name == "" && (w.FirstName != "" || w.LastName != "") {
		name = strings.TrimSpace(w.FirstName + " " + w.LastName)
	}

	active := true
	if w.IsActive != nil {
		active = *w.IsActive
	}

	return domain.User{
		ID:         string(w.ID),
		Username:   w.Username,
		Name:       name,
		Email:      w.Email,
		Role:       role,
		Department: w.Department,
		ManagerID:  string(w.ManagerID),
		IsActive:   active,
		CreatedAt:  w.CreatedAt,
	}, nil
}

type wireLeaveRequest struct {
	ID              flexID     `json:"id"`
	EmployeeID      flexID     `json:"employeeId"`
	UserID          flexID     `json:"userId"`
	EmployeeName    string     `json:"employeeName"`
	UserName        string     `json:"userName"`
	Name            string     `json:"name"`
	StartDate       string     `json:"startDate"`
	EndDate         string     `json:"endDate"`
	FromDate        string     `json:"fromDate"`
	ToDate          string     `json:"toDate"`
	LeaveType       string     `json:"leaveType"`
	Reason          string     `json:"reason"`
	Status          flexString `json:"status"`
	CreatedAt       string     `json:"createdAt"`
	RejectionReason string     `json:"rejectionReason"`
	ManagerID       flexID     `json:"managerId"`
	HRID            flexID     `json:"hrId"`
}

// dateOnly strips a time component some versions append to calendar dates
// ("2025-03-01T00:00:00" or "2025-03-01 00:00:00").
func dateOnly(s string) string {
	if i := strings.IndexAny(s, "T "); i > 0 {
		return s[:i]
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (w wireLeaveRequest) toDomain() (domain.LeaveRequest, error) {
	status, err := domain.ParseStatus(string(w.Status))
	if err != nil {
		return domain.LeaveRequest{}, err
	}

	return domain.LeaveRequest{
		ID:              string(w.ID),
		RequesterID:     firstNonEmpty(string(w.EmployeeID), string(w.UserID)),
		RequesterName:   firstNonEmpty(w.EmployeeName, w.UserName, w.Name),
		LeaveType:       w.LeaveType,
		FromDate:        dateOnly(firstNonEmpty(w.FromDate, w.StartDate)),
		ToDate:          dateOnly(firstNonEmpty(w.ToDate, w.EndDate)),
		Reason:          w.Reason,
		Status:          status,
		CreatedAt:       w.CreatedAt,
		RejectionReason: w.RejectionReason,
		ManagerID:       string(w.ManagerID),
		HRID:            string(w.HRID),
	}, nil
}

func requestsToDomain(in []wireLeaveRequest) ([]domain.LeaveRequest, error) {
	out := make([]domain.LeaveRequest, 0, len(in))
	for _, w := range in {
		req, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

type wireDepartment struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	UserCount   int         `json:"userCount"`
	ManagerName string      `json:"managerName"`
}

func (w wireDepartment) toDomain() domain.Department {
	id, _ := strconv.Atoi(w.ID.String())
	return domain.Department{
		ID:          id,
		Name:        w.Name,
		UserCount:   w.UserCount,
		ManagerName: w.ManagerName,
	}
}
