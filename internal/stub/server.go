package stub

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
	"github.com/leavesystem/leavectl/pkg/logger"
)

// Server exposes the in-memory store over the backend's HTTP contract.
// Status values go out in the underscored spelling older deployments used,
// which keeps the client's normalization path exercised end to end.
type Server struct {
	store  *Store
	secret []byte
	log    *logger.Logger
	ttl    time.Duration
}

// NewServer wires the store onto an echo instance.
func NewServer(store *Store, secret string, log *logger.Logger) *Server {
	return &Server{
		store:  store,
		secret: []byte(secret),
		log:    log,
		ttl:    8 * time.Hour,
	}
}

// Handler builds the routed echo handler.
func (s *Server) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = s.errorHandler

	e.POST("/auth/login", s.login)
	e.POST("/auth/register", s.register)

	authed := e.Group("", s.requireAuth)
	authed.POST("/LeaveRequest", s.createRequest)
	authed.GET("/LeaveRequest/my", s.myRequests)

	mgr := e.Group("/manager", s.requireAuth, s.requireRole(domain.RoleManager))
	mgr.GET("/pending", s.managerPending)
	mgr.POST("/:id/approve", s.managerAction(domain.ActionApprove))
	mgr.POST("/:id/reject", s.managerAction(domain.ActionReject))
	mgr.POST("/:id/cancel", s.managerAction(domain.ActionCancel))

	hr := e.Group("/hr", s.requireAuth, s.requireRole(domain.RoleHR))
	hr.GET("/pending-requests", s.hrPending)
	hr.POST("/approve/:id", s.hrAction(domain.ActionApprove))
	hr.POST("/reject/:id", s.hrAction(domain.ActionReject))
	hr.POST("/:id/cancel", s.hrAction(domain.ActionCancel))
	hr.GET("/All-users", s.listUsers)
	hr.GET("/department-list", s.departmentList)

	return e
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	} else {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeInvalidInput:
			status = http.StatusBadRequest
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeForbidden:
			status = http.StatusForbidden
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeConflict:
			status = http.StatusConflict
		}
		message = apperrors.UserMessage(err)
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	_ = c.JSON(status, map[string]string{"message": message})
}

type claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

const userContextKey = "stub.user"

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return apperrors.Unauthorized("missing bearer token")
		}
		var cl claims
		token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			return apperrors.Unauthorized("invalid or expired token")
		}
		user, ok := s.store.UserByID(cl.Subject)
		if !ok {
			return apperrors.Unauthorized("unknown user")
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

func (s *Server) requireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if currentUser(c).Role != role {
				return apperrors.Forbidden("insufficient role")
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *domain.User {
	return c.Get(userContextKey).(*domain.User)
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(c echo.Context) error {
	var body loginBody
	if err := c.Bind(&body); err != nil {
		return apperrors.InvalidInput("body", "malformed request body")
	}
	user, err := s.store.Authenticate(body.Username, body.Password)
	if err != nil {
		return err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return err
	}
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("User logged in")
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  wireUser(user),
	})
}

type registerBody struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (s *Server) register(c echo.Context) error {
	var body registerBody
	if err := c.Bind(&body); err != nil {
		return apperrors.InvalidInput("body", "malformed request body")
	}
	if strings.TrimSpace(body.Username) == "" {
		return apperrors.InvalidInput("username", "username is required")
	}
	if len(body.Password) < 8 {
		return apperrors.InvalidInput("password", "password must be at least 8 characters")
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		return err
	}
	user, err := s.store.Register(body.Username, body.Password, body.Name, body.Email, role, body.Department)
	if err != nil {
		return err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return err
	}
	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("User registered")
	return c.JSON(http.StatusCreated, map[string]any{
		"token": token,
		"user":  wireUser(user),
	})
}

type createRequestBody struct {
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	LeaveType string `json:"leaveType"`
	Reason    string `json:"reason"`
}

func (s *Server) createRequest(c echo.Context) error {
	var body createRequestBody
	if err := c.Bind(&body); err != nil {
		return apperrors.InvalidInput("body", "malformed request body")
	}
	req, err := s.store.CreateRequest(currentUser(c), body.LeaveType, body.FromDate, body.ToDate, body.Reason)
	if err != nil {
		return err
	}
	s.log.Info().Str("request_id", req.ID).Str("leave_type", req.LeaveType).Msg("Leave request created")
	return c.JSON(http.StatusCreated, wireRequest(req))
}

func (s *Server) myRequests(c echo.Context) error {
	reqs := s.store.RequestsFor(currentUser(c).ID)
	return c.JSON(http.StatusOK, wireRequests(reqs))
}

func (s *Server) managerPending(c echo.Context) error {
	return c.JSON(http.StatusOK, wireRequests(s.store.ByStatus(domain.StatusPending)))
}

type reasonBody struct {
	Reason string `json:"reason"`
}

func (s *Server) managerAction(action domain.Action) echo.HandlerFunc {
	return s.transitionHandler(action)
}

func (s *Server) hrAction(action domain.Action) echo.HandlerFunc {
	return s.transitionHandler(action)
}

func (s *Server) transitionHandler(action domain.Action) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body reasonBody
		if c.Request().Body != nil && c.Request().ContentLength > 0 {
			if err := c.Bind(&body); err != nil {
				return apperrors.InvalidInput("body", "malformed request body")
			}
		}
		actor := currentUser(c)
		id := c.Param("id")
		if err := s.store.Transition(actor, id, action, body.Reason); err != nil {
			return err
		}
		s.log.Info().
			Str("request_id", id).
			Str("action", string(action)).
			Str("role", string(actor.Role)).
			Msg("Leave request transitioned")
		return c.JSON(http.StatusOK, map[string]string{"message": "ok"})
	}
}

func (s *Server) hrPending(c echo.Context) error {
	reqs := s.store.ByStatus(domain.StatusManagerApproved)
	return c.JSON(http.StatusOK, map[string]any{
		"count":         len(reqs),
		"leaveRequests": wireRequests(reqs),
	})
}

func (s *Server) listUsers(c echo.Context) error {
	q := UserListQuery{
		SortBy:   c.QueryParam("sortBy"),
		Role:     c.QueryParam("role"),
		IsActive: ParseBoolParam(c.QueryParam("isActive")),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	q.Desc, _ = strconv.ParseBool(c.QueryParam("desc"))
	q.DepartmentID, _ = strconv.Atoi(c.QueryParam("departmentId"))

	page := s.store.ListUsers(q)
	items := make([]map[string]any, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, wireUser(&page.Items[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items": items,
		"total": page.Total,
	})
}

func (s *Server) departmentList(c echo.Context) error {
	deps := s.store.Departments()
	out := make([]map[string]any, 0, len(deps))
	for _, d := range deps {
		out = append(out, map[string]any{
			"id":          d.ID,
			"name":        d.Name,
			"userCount":   d.UserCount,
			"managerName": d.ManagerName,
		})
	}
	return c.JSON(http.StatusOK, out)
}

var wireStatus = map[domain.Status]string{
	domain.StatusPending:         "Pending",
	domain.StatusManagerApproved: "Manager_Approved",
	domain.StatusHRApproved:      "HR_Approved",
	domain.StatusRejected:        "Rejected",
	domain.StatusCancelled:       "Cancelled",
}

func wireRequest(r *domain.LeaveRequest) map[string]any {
	return map[string]any{
		"id":              r.ID,
		"userId":          r.RequesterID,
		"userName":        r.RequesterName,
		"leaveType":       r.LeaveType,
		"fromDate":        r.FromDate,
		"toDate":          r.ToDate,
		"reason":          r.Reason,
		"status":          wireStatus[r.Status],
		"createdAt":       r.CreatedAt,
		"rejectionReason": r.RejectionReason,
		"managerId":       r.ManagerID,
		"hrId":            r.HRID,
	}
}

func wireRequests(reqs []domain.LeaveRequest) []map[string]any {
	out := make([]map[string]any, 0, len(reqs))
	for i := range reqs {
		out = append(out, wireRequest(&reqs[i]))
	}
	return out
}

func wireUser(u *domain.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"name":       u.Name,
		"email":      u.Email,
		"role":       string(u.Role),
		"department": u.Department,
		"isActive":   u.IsActive,
		"createdAt":  u.CreatedAt,
	}
}
