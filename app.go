package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/petervdpas/jsondesk/internal/app"
	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/client"
	"github.com/petervdpas/jsondesk/internal/config"
	"github.com/petervdpas/jsondesk/internal/editor"
	"github.com/petervdpas/jsondesk/internal/tui"
)

type clientFlags struct {
	server  *string
	cfgPath *string
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		server:  fs.String("server", "", "Server URL (overrides client.server_url)"),
		cfgPath: fs.String("config", "", "Config file (default ./"+config.FileName+" if present)"),
	}
}

// load resolves the config and builds a client for it.
func (f clientFlags) load() (config.Config, *client.Client, error) {
	cfg, err := loadClientConfig(*f.cfgPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	c, err := app.NewClient(cfg, *f.server)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, c, nil
}

func loadClientConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(config.FileName); err == nil {
		return config.Load(config.FileName)
	}
	return config.Default(), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runEdit(args []string) int {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	cf := addClientFlags(fs)
	_ = fs.Parse(args)

	cfg, c, err := cf.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	sess, err := app.NewSession(cfg, c, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The terminal belongs to the TUI while it runs.
	log.SetOutput(io.Discard)

	ctx, cancel := signalContext()
	defer cancel()

	if err := tui.Run(ctx, sess); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runGet(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := addClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: jsondesk get [-server URL] <file>")
		return 2
	}

	cfg, c, err := cf.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	name := fs.Arg(0)
	body, err := c.ReadFile(ctx, name)
	if err != nil {
		n := editor.LoadNotice(err)
		fmt.Fprintf(stderr, "%s (%s: %v)\n", n.Text, c.BaseURL(), err)
		var se *client.HTTPStatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			printHint(stderr, cfg, name)
		}
		return 1
	}
	_, _ = io.WriteString(stdout, body)
	return 0
}

// printHint suggests catalog entries close to a name the server did not know.
func printHint(w io.Writer, cfg config.Config, name string) {
	cat, err := catalog.New(cfg.Catalog.Files)
	if err != nil || cat.Contains(name) {
		return
	}
	if hint := cat.Suggest(name); len(hint) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(hint, ", "))
	}
}

func runPut(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := addClientFlags(fs)
	inPath := fs.String("in", "", "Read the body from this file instead of stdin")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: jsondesk put [-server URL] [-in path] <file>")
		return 2
	}

	_, c, err := cf.load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var body []byte
	if *inPath != "" {
		body, err = os.ReadFile(*inPath)
	} else {
		body, err = io.ReadAll(stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: read input: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	n := editor.SaveNotice(c.SaveFile(ctx, fs.Arg(0), string(body)))
	switch {
	case n.Text == editor.MsgSaveFailed:
		// The server never answered usefully; say which one.
		fmt.Fprintf(stderr, "%s (%s: %v)\n", n.Text, c.BaseURL(), n.Err)
		return 1
	case n.Kind == editor.NoticeError:
		fmt.Fprintln(stderr, n.Text)
		return 1
	}
	fmt.Fprintln(stdout, n.Text)
	return 0
}
