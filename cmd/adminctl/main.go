// adminctl signs an operator in to the shop API and issues authenticated
// calls through the refreshing client. Credentials persist in the store
// selected by STORE_MODE.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"shopadmin/internal/apiclient"
	"shopadmin/internal/config"
	"shopadmin/internal/logging"
	"shopadmin/internal/store"
	"shopadmin/internal/store/backend"
)

func main() {
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	st, closeStore, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	return run(ctx, os.Args[1:], cfg, st, os.Stdout)
}

const usage = `Usage: adminctl <command> [flags]

Commands:
  login      sign in and store the session
  logout     forget the stored session
  get PATH   GET an API path and print the body
  products   list products (--search, --status)
  summary    print the financial summary (--from, --to as YYYY-MM-DD)
`

func run(ctx context.Context, args []string, cfg config.Config, st store.Store, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(out, usage)
		return nil
	}

	client := apiclient.New(cfg.APIBaseURL, st,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		apiclient.WithRedirector(apiclient.RedirectFunc(func(context.Context) {
			fmt.Fprintln(out, "Session expired. Run `adminctl login` to sign in again.")
		})),
	)

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return runLogin(ctx, client, cfg, rest, out)
	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Signed out.")
		return nil
	case "get":
		if len(rest) != 1 {
			return errors.New("get takes exactly one path")
		}
		raw, err := client.Get(ctx, rest[0], nil)
		if err != nil {
			return err
		}
		return printJSON(out, raw)
	case "products":
		return runProducts(ctx, client, rest, out)
	case "summary":
		return runSummary(ctx, client, rest, out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

func runLogin(ctx context.Context, client *apiclient.Client, cfg config.Config, args []string, out io.Writer) error {
	var username, password string
	flagSet := pflag.NewFlagSet("login", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&username, "username", "u", cfg.AdminUsername, "operator username")
	flagSet.StringVarP(&password, "password", "p", "", "operator password (default ADMIN_PASSWORD)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if password == "" {
		password = cfg.AdminPassword
	}

	if _, err := client.Login(ctx, map[string]string{"username": username, "password": password}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s.\n", username)
	return nil
}

func runProducts(ctx context.Context, client *apiclient.Client, args []string, out io.Writer) error {
	var search, status string
	flagSet := pflag.NewFlagSet("products", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&search, "search", "", "filter by name")
	flagSet.StringVar(&status, "status", "", "filter by status (ACTIVE, INACTIVE)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if status != "" {
		query.Set("status", strings.ToUpper(status))
	}
	raw, err := client.Get(ctx, "/api/products", query)
	if err != nil {
		return err
	}
	return printJSON(out, raw)
}

func runSummary(ctx context.Context, client *apiclient.Client, args []string, out io.Writer) error {
	var from, to string
	flagSet := pflag.NewFlagSet("summary", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVar(&from, "from", "", "first day included (YYYY-MM-DD)")
	flagSet.StringVar(&to, "to", "", "last day included (YYYY-MM-DD)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if from != "" {
		query.Set("startDate", from)
	}
	if to != "" {
		query.Set("endDate", to)
	}
	raw, err := client.Get(ctx, "/api/dashboards/financial-summary", query)
	if err != nil {
		return err
	}
	return printJSON(out, raw)
}

func printJSON(out io.Writer, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		_, err = out.Write(append(raw, '\n'))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
