// Command login is an interactive console login guarded by the credential
// check chain: Throttling(2), then UserExists, then RoleCheck. It prompts
// for an email and password until a login succeeds.
//
// A tripped throttle or end of input exits with status 1.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/menezmethod/handoff/internal/auth"
	"github.com/menezmethod/handoff/internal/logging"
	"github.com/menezmethod/handoff/internal/middleware"
)

// errEndOfInput is returned when stdin closes before a login succeeds.
var errEndOfInput = errors.New("input closed before a successful login")

type options struct {
	usersFile  string
	rpm        int
	admins     []string
	bcryptCost int
	logLevel   string
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	opts, err := parseFlags(args, errOut)
	if err != nil {
		return 2
	}
	logger := logging.NewLogger(errOut, logging.ParseLevel(opts.logLevel), "text", "")

	store, err := loadUsers(opts)
	if err != nil {
		logger.Error("failed to load users", "err", err)
		return 1
	}

	chain, err := middleware.NewLoginChain(store, opts.rpm, nil, opts.admins...)
	if err != nil {
		logger.Error("failed to build login chain", "err", err)
		return 1
	}
	srv := auth.NewServer(store, logger)
	srv.SetMiddleware(chain.Head)

	ctx = middleware.WithDecisionReporter(ctx, middleware.NewWriterReporter(out))
	if err := loginLoop(ctx, srv, in, out); err != nil {
		if middleware.IsFatal(err) {
			logger.Error("login aborted", "err", err)
		} else {
			logger.Error("login failed", "err", err)
		}
		return 1
	}
	return 0
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var opts options
	var admins string
	fs.StringVar(&opts.usersFile, "users", "", "users file with email:password lines (default: built-in demo users)")
	fs.IntVar(&opts.rpm, "rpm", 2, "login attempts allowed per minute")
	fs.StringVar(&admins, "admins", middleware.DefaultAdminEmail, "comma-separated admin emails")
	fs.IntVar(&opts.bcryptCost, "bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for stored passwords")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.rpm < 1 {
		err := fmt.Errorf("-rpm must be at least 1, got %d", opts.rpm)
		fmt.Fprintln(errOut, err)
		fs.Usage()
		return opts, err
	}

	for _, a := range strings.Split(admins, ",") {
		if a = strings.TrimSpace(a); a != "" {
			opts.admins = append(opts.admins, a)
		}
	}
	return opts, nil
}

// loadUsers reads the users file, or registers the two demo users when
// none is given.
func loadUsers(opts options) (*auth.Store, error) {
	if opts.usersFile != "" || os.Getenv(auth.UsersEnv) != "" {
		return auth.LoadStore(opts.usersFile, opts.bcryptCost)
	}

	store := auth.NewStore(opts.bcryptCost)
	if err := store.Register("admin@example.com", "admin_pass"); err != nil {
		return nil, err
	}
	if err := store.Register("user@example.com", "user_pass"); err != nil {
		return nil, err
	}
	return store, nil
}

// loginLoop prompts for credentials until srv accepts a login.
func loginLoop(ctx context.Context, srv *auth.Server, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func(msg string) (string, error) {
		fmt.Fprintln(out, msg)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errEndOfInput
		}
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}

	for {
		fmt.Fprintln(out)
		email, err := prompt("Enter your email:")
		if err != nil {
			return err
		}
		password, err := prompt("Enter your password:")
		if err != nil {
			return err
		}

		ok, err := srv.LogIn(ctx, middleware.Credentials{Email: email, Password: password})
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
}
