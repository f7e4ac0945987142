package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goversion "github.com/caarlos0/go-version"

	"github.com/leavesystem/leavectl/internal/client"
	"github.com/leavesystem/leavectl/internal/session"
	"github.com/leavesystem/leavectl/pkg/logger"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
	builtBy = ""
)

const usage = `leavectl manages leave requests from the command line.

Usage:
  leavectl <command> [flags]

Commands:
  login        Log in and store the session
  register     Create an account and log in
  logout       Clear the stored session
  whoami       Show the logged-in user
  submit       File a new leave request
  my           List your own leave requests
  pending      List requests awaiting your first-level approval (managers)
  approve      First-level approve a request (managers)
  reject       Reject a request (managers)
  cancel       Cancel a request (managers)
  hr           Final-approval operations (hr pending|approve|reject|cancel)
  users        List users (HR)
  departments  List departments (HR)
  version      Print version information

Environment:
  LEAVECTL_API_URL    Backend base URL (default http://localhost:8090)
  LEAVECTL_STATE_DIR  Session state directory (default <user config dir>/leavectl)
  LOG_LEVEL           Log verbosity (default warn)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "leavectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, in io.Reader) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return nil
	}
	if args[0] == "version" {
		fmt.Fprintln(out, buildVersion(version, commit, date, builtBy).String())
		return nil
	}

	a, err := newApp(out, in)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.sess.Initialize(); err != nil {
		return err
	}

	switch args[0] {
	case "login":
		return a.cmdLogin(ctx, args[1:])
	case "register":
		return a.cmdRegister(ctx, args[1:])
	case "logout":
		return a.cmdLogout(args[1:])
	case "whoami":
		return a.cmdWhoami(args[1:])
	case "submit":
		return a.cmdSubmit(ctx, args[1:])
	case "my":
		return a.cmdMy(ctx, args[1:])
	case "pending":
		return a.cmdPending(ctx, args[1:])
	case "approve":
		return a.cmdManagerAction(ctx, "approve", args[1:])
	case "reject":
		return a.cmdManagerAction(ctx, "reject", args[1:])
	case "cancel":
		return a.cmdManagerAction(ctx, "cancel", args[1:])
	case "hr":
		return a.cmdHR(ctx, args[1:])
	case "users":
		return a.cmdUsers(ctx, args[1:])
	case "departments":
		return a.cmdDepartments(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q (run 'leavectl help')", args[0])
	}
}

type app struct {
	log     *logger.Logger
	sess    *session.Store
	auth    *client.AuthClient
	leave   *client.LeaveClient
	manager *client.ManagerClient
	hr      *client.HRClient
	out     io.Writer
	in      *bufio.Reader
}

func newApp(out io.Writer, in io.Reader) (*app, error) {
	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "warn"),
		ServiceName: "leavectl",
		Version:     version,
		Pretty:      true,
	})

	baseURL := getEnv("LEAVECTL_API_URL", "http://localhost:8090")
	stateDir := os.Getenv("LEAVECTL_STATE_DIR")
	if stateDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state directory: %w", err)
		}
		stateDir = filepath.Join(configDir, "leavectl")
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	httpClient := client.NewHTTPClient(baseURL, log)
	auth := client.NewAuthClient(httpClient)

	return &app{
		log:     log,
		sess:    session.NewStore(stateDir, auth, httpClient, log),
		auth:    auth,
		leave:   client.NewLeaveClient(httpClient),
		manager: client.NewManagerClient(httpClient),
		hr:      client.NewHRClient(httpClient),
		out:     out,
		in:      bufio.NewReader(in),
	}, nil
}

func buildVersion(version, commit, date, builtBy string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("leavectl", "Leave request management client.", ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
