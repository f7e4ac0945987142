package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/leavesystem/leavectl/internal/client"
	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/internal/routes"
	"github.com/leavesystem/leavectl/internal/worklist"
	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// gate maps a command onto its route and refuses it the way the route
// guard would: unauthenticated callers are sent to login, authenticated
// callers outside the route's role set are turned away.
func (a *app) gate(path string) error {
	d := routes.Evaluate(path, a.sess.State())
	switch d.Outcome {
	case routes.Render:
		return nil
	case routes.RedirectLogin:
		return apperrors.Unauthorized("not logged in; run 'leavectl login' first")
	case routes.RedirectDashboard:
		return apperrors.Forbidden("your role does not have access to this command")
	default:
		return apperrors.New(apperrors.ErrCodeInternal, "session is not initialized")
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		v, err := a.prompt("Username: ")
		if err != nil {
			return err
		}
		*username = v
	}
	if *password == "" {
		v, err := a.prompt("Password: ")
		if err != nil {
			return err
		}
		*password = v
	}

	user, err := a.sess.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password (prompted if omitted)")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	role := fs.String("role", string(domain.RoleEmployee), "role (EMPLOYEE, MANAGER, HR)")
	department := fs.String("department", "", "department name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		v, err := a.prompt("Password: ")
		if err != nil {
			return err
		}
		*password = v
	}

	if _, err := a.auth.Register(ctx, client.RegisterParams{
		Username:   *username,
		Password:   *password,
		Name:       *name,
		Email:      *email,
		Role:       *role,
		Department: *department,
	}); err != nil {
		return err
	}

	// Log the fresh account in so the session is persisted like any login.
	user, err := a.sess.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and logged in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *app) cmdLogout(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("logout takes no arguments")
	}
	a.sess.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) cmdWhoami(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("whoami takes no arguments")
	}
	user, err := a.sess.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(a.out, "Role: %s  Department: %s\n", user.Role, user.Department)

	var areas []string
	for _, r := range routes.NavItems(user.Role) {
		areas = append(areas, r.Title)
	}
	fmt.Fprintf(a.out, "Areas: %s\n", strings.Join(areas, ", "))
	return nil
}

func (a *app) cmdSubmit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	from := fs.String("from", "", "first day of leave (YYYY-MM-DD)")
	to := fs.String("to", "", "last day of leave (YYYY-MM-DD)")
	leaveType := fs.String("type", domain.LeaveTypeAnnual, "leave type (Annual, Sick, Temporary)")
	reason := fs.String("reason", "", "reason for the request")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(routes.PathNewRequest); err != nil {
		return err
	}

	req, err := a.leave.Create(ctx, client.CreateParams{
		FromDate:  *from,
		ToDate:    *to,
		LeaveType: *leaveType,
		Reason:    *reason,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Submitted %s leave %s to %s (%s)\n", req.LeaveType, req.FromDate, req.ToDate, req.Status)
	return nil
}

func (a *app) cmdMy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("my", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	leaveType := fs.String("type", "", "filter by leave type")
	sortKey := fs.String("sort", string(worklist.SortRecentFirst), "sort order (recent, oldest, name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(routes.PathMyRequests); err != nil {
		return err
	}

	reqs, err := a.leave.ListMine(ctx)
	if err != nil {
		return err
	}

	f := worklist.Filter{LeaveType: *leaveType}
	if *status != "" {
		st, err := domain.ParseStatus(*status)
		if err != nil {
			return err
		}
		f.Status = &st
	}
	reqs = worklist.SortRequests(worklist.Apply(reqs, f), worklist.SortKey(*sortKey))
	a.printRequests(reqs)
	return nil
}

func (a *app) cmdPending(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("pending takes no arguments")
	}
	if err := a.gate(routes.PathPendingApprovals); err != nil {
		return err
	}
	reqs, err := a.manager.Pending(ctx)
	if err != nil {
		return err
	}
	a.printRequests(reqs)
	return nil
}

func (a *app) cmdManagerAction(ctx context.Context, name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	reason := fs.String("reason", "", "reason (required for reject; prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: leavectl %s [--reason ...] <request-id>", name)
	}
	if err := a.gate(routes.PathPendingApprovals); err != nil {
		return err
	}
	user, err := a.sess.Current()
	if err != nil {
		return err
	}

	ctrl := worklist.NewController(user.Role, a.manager.Pending, a.log)
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	row, err := findRow(ctrl.Rows(), fs.Arg(0))
	if err != nil {
		return err
	}

	action := domain.Action(name)
	call := func(ctx context.Context, id string) error {
		switch action {
		case domain.ActionApprove:
			return a.manager.Approve(ctx, id)
		case domain.ActionCancel:
			return a.manager.Cancel(ctx, id)
		default:
			r := *reason
			if r == "" {
				r, err = a.promptReason(worklist.CaptureReject, row)
				if err != nil {
					return err
				}
			}
			return a.manager.Reject(ctx, id, r)
		}
	}
	if err := ctrl.Act(ctx, row.ID, action, call); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Request %s: %s confirmed\n", shortID(row.ID), name)
	return nil
}

func (a *app) cmdHR(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: leavectl hr <pending|approve|reject|cancel> [flags]")
	}
	if err := a.gate(routes.PathHRApprovals); err != nil {
		return err
	}

	sub, rest := args[0], args[1:]
	if sub == "pending" {
		reqs, err := a.hr.PendingRequests(ctx)
		if err != nil {
			return err
		}
		a.printRequests(reqs)
		return nil
	}

	fs := flag.NewFlagSet("hr "+sub, flag.ContinueOnError)
	reason := fs.String("reason", "", "reason for the decision (prompted if omitted)")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: leavectl hr %s [--reason ...] <request-id>", sub)
	}
	user, err := a.sess.Current()
	if err != nil {
		return err
	}

	ctrl := worklist.NewController(user.Role, a.hr.PendingRequests, a.log)
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	row, err := findRow(ctrl.Rows(), fs.Arg(0))
	if err != nil {
		return err
	}

	var action domain.Action
	var call worklist.TransitionCall
	switch sub {
	case "approve":
		action = domain.ActionApprove
		call = func(ctx context.Context, id string) error {
			r := *reason
			if r == "" {
				r, err = a.promptReason(worklist.CaptureApprove, row)
				if err != nil {
					return err
				}
			}
			return a.hr.Approve(ctx, id, r)
		}
	case "reject":
		action = domain.ActionReject
		call = func(ctx context.Context, id string) error {
			r := *reason
			if r == "" {
				r, err = a.promptReason(worklist.CaptureReject, row)
				if err != nil {
					return err
				}
			}
			return a.hr.Reject(ctx, id, r)
		}
	case "cancel":
		action = domain.ActionCancel
		call = func(ctx context.Context, id string) error { return a.hr.Cancel(ctx, id) }
	default:
		return fmt.Errorf("unknown hr subcommand %q", sub)
	}

	if err := ctrl.Act(ctx, row.ID, action, call); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Request %s: %s confirmed\n", shortID(row.ID), sub)
	return nil
}

func (a *app) cmdUsers(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 20, "rows per page")
	sortBy := fs.String("sort-by", "id", "sort column (id, name, username)")
	desc := fs.Bool("desc", false, "sort descending")
	role := fs.String("role", "", "filter by role")
	active := fs.String("active", "", "filter by active flag (true or false)")
	department := fs.Int("department", 0, "filter by department id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.gate(routes.PathUsers); err != nil {
		return err
	}

	q := client.UserQuery{
		Page:         *page,
		PageSize:     *pageSize,
		SortBy:       *sortBy,
		Desc:         *desc,
		Role:         *role,
		DepartmentID: *department,
	}
	if *active != "" {
		v := *active == "true"
		q.IsActive = &v
	}
	users, total, err := a.hr.ListUsers(ctx, q)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tUSERNAME\tROLE\tDEPARTMENT\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.Name, u.Username, u.Role, u.Department, u.IsActive)
	}
	w.Flush()

	win := worklist.Paginate(total, *page, *pageSize)
	fmt.Fprintf(a.out, "Page %d of %d (%d users)\n", win.Page, win.PageCount, total)
	return nil
}

func (a *app) cmdDepartments(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("departments takes no arguments")
	}
	if err := a.gate(routes.PathUsers); err != nil {
		return err
	}
	deps, err := a.hr.Departments(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUSERS\tMANAGER")
	for _, d := range deps {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", d.ID, d.Name, d.UserCount, d.ManagerName)
	}
	return w.Flush()
}

func (a *app) printRequests(reqs []domain.LeaveRequest) {
	if len(reqs) == 0 {
		fmt.Fprintln(a.out, "No leave requests")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUESTER\tTYPE\tFROM\tTO\tSTATUS\tREASON")
	for _, r := range reqs {
		reason := r.Reason
		if r.Status == domain.StatusRejected && r.RejectionReason != "" {
			reason = "rejected: " + r.RejectionReason
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.RequesterName, r.LeaveType, r.FromDate, r.ToDate, r.Status, reason)
	}
	w.Flush()
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}

func (a *app) promptReason(mode worklist.CaptureMode, row domain.LeaveRequest) (string, error) {
	rc := worklist.NewReasonCapture(mode, row.RequesterName, row.LeaveType)
	text, err := a.prompt(rc.Title() + "\nReason: ")
	if err != nil {
		return "", err
	}
	rc.Enter(text)
	return rc.Commit()
}

// findRow resolves a full or unambiguous prefix id against the worklist.
func findRow(rows []domain.LeaveRequest, id string) (domain.LeaveRequest, error) {
	var matches []domain.LeaveRequest
	for _, r := range rows {
		if r.ID == id {
			return r, nil
		}
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return domain.LeaveRequest{}, apperrors.NotFound("no request matches that id")
	default:
		return domain.LeaveRequest{}, apperrors.InvalidInput("id", "id prefix is ambiguous")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
