package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"storefront-be/internal/client"
	"storefront-be/internal/logger"
	"storefront-be/internal/session"
)

// Env is the state shared by every command for one invocation.
type Env struct {
	Client *client.Client
	Guard  *session.Guard
	Out    io.Writer
	Err    io.Writer
}

func defaultStatePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "storectl", "session.json")
	}
	return ".storectl-session.json"
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("storectl", flag.ContinueOnError)
	global.SetOutput(stderr)
	apiURL := global.String("api", envOr("STORE_API_URL", "http://localhost:8080"), "API base URL")
	statePath := global.String("state", envOr("STORECTL_STATE", defaultStatePath()), "session state file")
	if err := global.Parse(args); err != nil {
		return 2
	}

	logger.Init(envOr("APP_ENV", "test"))
	defer logger.Sync()

	shared := session.NewStorage()
	if err := client.LoadState(*statePath, shared); err != nil {
		fmt.Fprintln(stderr, "Error: load session:", err)
		return 1
	}

	guard := session.NewGuard(session.NewTab(shared), session.WithRedirect(func(string) {
		fmt.Fprintln(stderr, "Session ended. Run 'storectl login' again.")
	}))
	guard.Start()
	defer guard.Stop()

	// keep polling while a command is in flight
	pollCtx, stopPoll := context.WithCancel(context.Background())
	polled := make(chan struct{})
	go func() {
		defer close(polled)
		guard.Run(pollCtx)
	}()

	env := &Env{
		Client: client.New(*apiURL, guard, nil),
		Guard:  guard,
		Out:    stdout,
		Err:    stderr,
	}

	registry := NewRegistry()
	registerCommands(registry)

	err := registry.Execute(env, global.Args())
	stopPoll()
	<-polled

	if saveErr := client.SaveState(*statePath, shared); saveErr != nil {
		fmt.Fprintln(stderr, "Error: save session:", saveErr)
		return 1
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newFlagSet(env *Env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Err)
	return fs
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func registerCommands(r *Registry) {
	r.Register(&Command{
		Name:        "login",
		Description: "Log in and store the session",
		Usage:       "storectl login -email EMAIL -password PASSWORD",
		Run:         loginCommand,
	})
	r.Register(&Command{
		Name:        "logout",
		Description: "Log out and clear the stored session",
		Usage:       "storectl logout",
		Run: func(env *Env, _ []string) error {
			return env.Client.Logout(context.Background())
		},
	})
	r.Register(&Command{
		Name:        "status",
		Description: "Validate the stored token locally",
		Usage:       "storectl status",
		Run:         statusCommand,
	})
	r.Register(&Command{
		Name:        "products",
		Description: "Search the catalog",
		Usage:       "storectl products [-q TEXT] [-category NAME] [-page N]",
		Run:         productsCommand,
	})
	r.Register(&Command{
		Name:        "orders",
		Description: "List your orders",
		Usage:       "storectl orders [-status STATUS] [-page N]",
		Run:         ordersCommand,
	})
	r.Register(&Command{
		Name:        "cancel",
		Description: "Cancel a placed order",
		Usage:       "storectl cancel ORDER_ID",
		Run:         cancelCommand,
	})
}

func loginCommand(env *Env, args []string) error {
	fs := newFlagSet(env, "login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		fs.Usage()
		return fmt.Errorf("email and password are required")
	}

	if msg, ok := env.Client.LogoutMessage(); ok {
		fmt.Fprintln(env.Err, msg)
	}

	s, err := env.Client.Login(context.Background(), *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Logged in as %s (%s)\n", s.User.Email, s.Role)

	if target, ok := env.Client.RedirectAfterLogin(); ok {
		fmt.Fprintf(env.Out, "Resume at %s\n", target)
	}
	return nil
}

func statusCommand(env *Env, _ []string) error {
	v := env.Guard.Validate()
	if !v.Valid {
		fmt.Fprintf(env.Out, "not logged in (%s)\n", v.Reason)
		return nil
	}

	exp := "never"
	if v.Claims.ExpiresAt != nil {
		exp = v.Claims.ExpiresAt.Local().Format(time.RFC1123)
	}
	fmt.Fprintf(env.Out, "user %d, role %s, expires %s\n", v.Claims.UserID, v.Claims.Role, exp)
	return nil
}

func productsCommand(env *Env, args []string) error {
	fs := newFlagSet(env, "products")
	q := fs.String("q", "", "search text")
	category := fs.String("category", "", "category filter")
	page := fs.Int("page", 1, "page number")
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if *q != "" {
		query.Set("q", *q)
	}
	if *category != "" {
		query.Set("category", *category)
	}
	query.Set("page", strconv.Itoa(*page))

	res, err := env.Client.Products(context.Background(), query)
	if err != nil {
		return err
	}
	if *asJSON {
		return json.NewEncoder(env.Out).Encode(res)
	}

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range res.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
	}
	return tw.Flush()
}

func ordersCommand(env *Env, args []string) error {
	fs := newFlagSet(env, "orders")
	status := fs.String("status", "", "status filter")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := env.Client.Orders(context.Background(), *status, *page)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tTOTAL\tCREATED")
	for _, o := range res.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.Status, o.Total.StringFixed(2), o.CreatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func cancelCommand(env *Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: storectl cancel ORDER_ID")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid order id %q", args[0])
	}

	o, err := env.Client.CancelOrder(context.Background(), uint(id))
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Order %s is %s\n", o.OrderNumber, o.Status)
	return nil
}
