// todoctl is a command-line client for the todo API.
//
// Usage:
//
//	todoctl [global flags] <command> [flags] [args]
//
// The server URL comes from --server or TODOCTL_SERVER. The bearer token
// comes from --token, TODOCTL_TOKEN or the token file written by login.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jaekwang-park/todolist/internal/client"
)

const defaultServer = "http://localhost:8000"

type globalOptions struct {
	server    string
	token     string
	userID    string
	tokenFile string
	jsonOut   bool
}

// env carries what every command needs.
type env struct {
	opts   globalOptions
	client *client.Client
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts globalOptions
	flagSet := pflag.NewFlagSet("todoctl", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&opts.server, "server", envOr("TODOCTL_SERVER", defaultServer), "API base URL")
	flagSet.StringVar(&opts.token, "token", os.Getenv("TODOCTL_TOKEN"), "bearer token (default: token file)")
	flagSet.StringVar(&opts.userID, "user", "", "send X-User-ID (servers in dev auth mode)")
	flagSet.StringVar(&opts.tokenFile, "token-file", defaultTokenFile(), "where login stores the token")
	flagSet.BoolVar(&opts.jsonOut, "json", false, "print raw JSON")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return fmt.Errorf("missing command")
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		return fmt.Errorf("unknown command %q (run todoctl --help)", rest[0])
	}

	if opts.token == "" {
		opts.token = readToken(opts.tokenFile)
	}
	clientOpts := []client.Option{client.WithToken(opts.token)}
	if opts.userID != "" {
		clientOpts = append(clientOpts, client.WithUserID(opts.userID))
	}

	e := &env{
		opts:   opts,
		client: client.New(opts.server, clientOpts...),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	return cmd.execute(ctx, e, rest[1:])
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "todoctl manages todos through the todo API.\n\nUsage:\n  todoctl [global flags] <command> [flags] [args]\n\nCommands:\n")
	for _, c := range commands() {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n")
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
