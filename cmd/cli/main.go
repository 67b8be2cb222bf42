// Command ac is a CLI client for the article plagiarism-check service.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cqhs/articlecheck/internal/config"
	"github.com/cqhs/articlecheck/internal/convert"
	"github.com/cqhs/articlecheck/internal/guard"
	"github.com/cqhs/articlecheck/internal/httpx"
	"github.com/cqhs/articlecheck/internal/model"
	"github.com/cqhs/articlecheck/internal/service"
	"github.com/cqhs/articlecheck/internal/session"
)

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `ac CLI
Usage:
  ac [-api URL] [-plagwise URL] [-timeout DUR] [-v] <cmd> [args]

Commands:
  version
  register   -u <username> -p <password> [-email <email>]
  login      -u <username> -p <password>           (saves token)
  logout
  whoami                                       (current user + landing view)
  check      -file <document>                      (submit for plagiarism check)
  link       -report <id>                          (append report id to account)
  callback   -file <payload.json|->                (normalize a webhook payload)
`)
	os.Exit(2)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// ---- wiring ----

type app struct {
	auth     service.AuthService
	plagwise service.PlagwiseService
	guard    *guard.Guard
}

func newApp(cfg *config.Config, apiURL, plagwiseURL string, timeout time.Duration, log *zap.Logger) *app {
	if apiURL == "" {
		apiURL = cfg.APIBaseURL
	}
	if plagwiseURL == "" {
		plagwiseURL = cfg.PlagwiseURL
	}
	if timeout <= 0 {
		timeout = cfg.RequestTimeout
	}

	sess := session.NewFile(session.DefaultDir())
	expired := func() {
		fmt.Fprintln(os.Stderr, "session expired, please login again")
	}

	api := httpx.New(apiURL, sess,
		httpx.WithTimeout(timeout),
		httpx.WithLogger(log),
		httpx.WithUnauthorizedHook(expired),
	)
	vendor := httpx.New(plagwiseURL, sess,
		httpx.WithTimeout(timeout),
		httpx.WithLogger(log),
		httpx.WithUnauthorizedHook(expired),
	)

	auth := service.NewAuthService(api, sess, log)
	account := service.VendorAccount{
		Email:       cfg.PlagwiseEmail,
		APIKey:      cfg.PlagwiseAPIKey,
		Environment: "production",
	}
	return &app{
		auth:     auth,
		plagwise: service.NewPlagwiseService(vendor, auth, account, log),
		guard:    guard.New(auth, log),
	}
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the configured backend and vendor APIs.
func main() {
	// global flags
	apiURL := flag.String("api", "", "application API base URL (overrides env)")
	plagwiseURL := flag.String("plagwise", "", "plagiarism vendor base URL (overrides env)")
	timeout := flag.Duration("timeout", 0, "request timeout (overrides env)")
	verbose := flag.Bool("v", false, "log requests")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	log := zap.NewNop()
	if *verbose {
		log, _ = zap.NewDevelopment()
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Load()
	a := newApp(cfg, *apiURL, *plagwiseURL, *timeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("ac %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		email := fs.String("email", "", "email (optional)")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}

		user, err := a.auth.Register(ctx, model.Registration{Username: *u, Password: *p, Email: *email})
		if err != nil {
			fail(err)
		}
		printJSON(user)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *u == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -u and -p")
			os.Exit(1)
		}

		if _, err := a.auth.Login(ctx, *u, *p); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "logout":
		a.auth.Logout()
		fmt.Println("ok")

	case "whoami":
		user, err := a.auth.CurrentUser(ctx)
		if err != nil {
			fail(err)
		}
		landing := a.guard.Check(ctx, guard.Requirements{Auth: true, User: true})
		out := struct {
			model.User
			Landing string `json:"landing"`
		}{User: user, Landing: landingView(landing)}
		printJSON(out)

	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		path := fs.String("file", "", "document to check")
		_ = fs.Parse(flag.Args()[1:])
		if *path == "" {
			fmt.Fprintln(os.Stderr, "need -file")
			os.Exit(1)
		}

		// The backend only accepts submissions from a live session; surface
		// that before uploading to the vendor.
		if !a.auth.IsAuthenticated() {
			fail(fmt.Errorf("not logged in"))
		}

		f, err := os.Open(*path)
		if err != nil {
			fail(err)
		}
		defer f.Close()

		receipt, err := a.plagwise.CheckPlagiarism(ctx, f.Name(), f)
		if err != nil {
			fail(err)
		}
		if receipt.ReportID != "" && !receipt.Linked {
			fmt.Fprintln(os.Stderr, "warning: report submitted but not linked to your account; run `ac link -report "+receipt.ReportID+"`")
		}
		printJSON(receipt)

	case "link":
		fs := flag.NewFlagSet("link", flag.ExitOnError)
		report := fs.String("report", "", "report id")
		_ = fs.Parse(flag.Args()[1:])
		if *report == "" {
			fmt.Fprintln(os.Stderr, "need -report")
			os.Exit(1)
		}

		user, err := a.auth.AppendReport(ctx, *report)
		if err != nil {
			fail(err)
		}
		printJSON(user)

	case "callback":
		fs := flag.NewFlagSet("callback", flag.ExitOnError)
		path := fs.String("file", "-", "webhook payload JSON ('-'=stdin)")
		_ = fs.Parse(flag.Args()[1:])

		raw, err := readAll(*path)
		if err != nil {
			fail(err)
		}
		result, err := convert.CallbackJSON(raw)
		if err != nil {
			fail(err)
		}
		printJSON(result)

	default:
		usage()
	}
}

// landingView names the view the route guard would land this user on.
func landingView(d guard.Decision) string {
	if d == guard.ToAdmin {
		return "admin"
	}
	return "home"
}
