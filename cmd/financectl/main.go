package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"finance_service/internal/client"

	"golang.org/x/term"
)

const usage = `Usage: financectl [-server URL] [-session PATH] <command> [flags]

Commands:
  register      -email E -name N            create an account (prompts for the password)
  login         -email E [-remember]        log in and keep the token
  logout                                    forget the stored token
  whoami                                    show the logged-in user
  categories                                list categories with your entries
  add-category  -name N                     create a category
  expense       -name N -amount A -category ID [-at RFC3339]
  incoming      -name N -amount A -category ID [-at RFC3339]
  month         [-month M] [-year Y]        monthly transactions and totals
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("financectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	server := fs.String("server", envOr("FINANCE_URL", "http://localhost:4000"), "API base URL")
	sessionPath := fs.String("session", os.Getenv("FINANCE_SESSION"), "token file (default: user config dir)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("missing command")
	}

	if *sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		*sessionPath = p
	}

	c := client.New(*server, client.NewFileSession(*sessionPath))

	cmd, rest := fs.Arg(0), fs.Args()[1:]

	switch cmd {
	case "register":
		return register(ctx, c, rest, stdin, stdout, stderr)
	case "login":
		return login(ctx, c, rest, stdin, stdout, stderr)
	case "logout":
		if err := c.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Logged out")
		return nil
	case "whoami":
		p, err := c.Verify(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s <%s> (id %s)\n", p.Name, p.Email, p.ID)
		return nil
	case "categories":
		return categories(ctx, c, stdout)
	case "add-category":
		return addCategory(ctx, c, rest, stdout, stderr)
	case "expense", "incoming":
		return addEntry(ctx, c, cmd, rest, stdout, stderr)
	case "month":
		return month(ctx, c, rest, stdout, stderr)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func register(ctx context.Context, c *client.Client, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "display name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *name == "" {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email, name")
	}

	password, err := promptPassword(stdin, stdout)
	if err != nil {
		return err
	}

	p, err := c.Register(ctx, *email, *name, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Registered %s (id %s)\n", p.Email, p.ID)

	return nil
}

func login(ctx context.Context, c *client.Client, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "email address")
	remember := fs.Bool("remember", false, "keep the session for 30 days instead of one")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	password, err := promptPassword(stdin, stdout)
	if err != nil {
		return err
	}

	p, err := c.Login(ctx, *email, password, *remember)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Logged in as %s\n", p.Name)

	return nil
}

func categories(ctx context.Context, c *client.Client, stdout io.Writer) error {
	list, err := c.Categories(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXPENSES\tINCOMINGS")
	for _, cat := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", cat.ID, cat.Name, len(cat.Expenses), len(cat.Incomings))
	}

	return tw.Flush()
}

func addCategory(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("add-category", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "category name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name")
	}

	cat, err := c.CreateCategory(ctx, *name)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Created category %s (id %s)\n", cat.Name, cat.ID)

	return nil
}

func addEntry(ctx context.Context, c *client.Client, kind string, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(kind, flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "description")
	amount := fs.Float64("amount", 0, "amount; the sign is applied for you")
	categoryID := fs.String("category", "", "category id")
	at := fs.String("at", "", "RFC3339 timestamp (default now)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *categoryID == "" || *amount == 0 {
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, amount, category")
	}

	var when time.Time
	if *at != "" {
		t, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("invalid -at: %w", err)
		}
		when = t
	}

	value := *amount
	if value < 0 {
		value = -value
	}

	var err error
	if kind == "expense" {
		_, err = c.CreateExpense(ctx, *name, -value, *categoryID, when)
	} else {
		_, err = c.CreateIncoming(ctx, *name, value, *categoryID, when)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Recorded %s %q\n", kind, *name)

	return nil
}

func month(ctx context.Context, c *client.Client, args []string, stdout, stderr io.Writer) error {
	now := time.Now().UTC()

	fs := flag.NewFlagSet("month", flag.ContinueOnError)
	fs.SetOutput(stderr)

	m := fs.Int("month", int(now.Month()), "month 1..12")
	y := fs.Int("year", now.Year(), "year")

	if err := fs.Parse(args); err != nil {
		return err
	}

	report, err := c.Monthly(ctx, *y, *m)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tNAME\tAMOUNT")
	for _, e := range report.Transactions.Incomings {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02"), e.Name, money(e.Amount))
	}
	for _, e := range report.Transactions.Expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02"), e.Name, money(e.Amount))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\n%04d-%02d  incomings %s  expenses %s  balance %s\n",
		report.Period.Year, report.Period.Month,
		money(report.Summary.Incomings), money(report.Summary.Expenses), money(report.Summary.Balance),
	)

	return nil
}

func promptPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "Password: ")

	password, err := readPassword(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(stdout)

	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
