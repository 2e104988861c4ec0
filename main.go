// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/petervdpas/jsondesk/internal/app"
	"github.com/petervdpas/jsondesk/internal/config"
	"github.com/petervdpas/jsondesk/internal/util"
)

var (
	showHelp = flag.Bool("h", false, "Show help")
	version  = flag.Bool("version", false, "Show version")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Usage = showUsage
	flag.Parse()

	if *version {
		fmt.Printf("jsondesk v%s\n", appVersion)
		return
	}

	if *showHelp {
		showUsage()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]

	switch command {
	case "serve":
		runServe(rest)

	case "init":
		runInit(rest)

	case "edit":
		os.Exit(runEdit(rest))

	case "get":
		os.Exit(runGet(rest, os.Stdout, os.Stderr))

	case "put":
		os.Exit(runPut(rest, os.Stdin, os.Stdout, os.Stderr))

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		fmt.Fprintln(os.Stderr)
		showUsage()
		os.Exit(1)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (overrides viewer.http_addr)")
	open := fs.Bool("open", false, "Open the editor in the default browser")
	_ = fs.Parse(args)

	absDir := mustDir(fs.Arg(0))

	cfgPath := filepath.Join(absDir, config.FileName)
	cfg, created, err := config.Ensure(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if created {
		fmt.Printf("Created default config: %s\n", cfgPath)
	}
	if *addr != "" {
		cfg.Viewer.HTTPAddr = *addr
	}

	printServeBanner(absDir, cfgPath, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("\nShutting down gracefully...")
		cancel()
	}()

	err = app.Run(ctx, app.Options{
		Dir:     absDir,
		CfgPath: cfgPath,
		Cfg:     cfg,
		Ready: func(url string) {
			if *open {
				if err := app.OpenBrowser(url); err != nil {
					log.Printf("open browser: %v", err)
				}
			}
		},
	})
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	interactive := fs.Bool("i", false, "Ask for settings interactively")
	_ = fs.Parse(args)

	dir := fs.Arg(0)
	if dir == "" {
		dir = "."
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		log.Fatalf("Invalid directory: %v", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		log.Fatalf("Create directory: %v", err)
	}

	cfgPath := filepath.Join(absDir, config.FileName)
	cfg, _, err := config.Ensure(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *interactive {
		cfg = app.PromptInteractive(os.Stdin, os.Stdout, absDir, cfgPath, cfg)
		if err := config.Save(cfgPath, cfg); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
	}

	dataDir := util.ResolvePath(absDir, cfg.Paths.DataDir)
	created, err := app.SeedDataDir(dataDir, cfg.Catalog.Files)
	if err != nil {
		log.Fatalf("Seed data dir: %v", err)
	}

	fmt.Printf("Config file: %s\n", cfgPath)
	fmt.Printf("Data dir:    %s\n", dataDir)
	for _, f := range created {
		fmt.Printf("  created %s\n", f)
	}
	fmt.Printf("\nRun: jsondesk serve %s\n", dir)
}

func mustDir(arg string) string {
	if arg == "" {
		arg = "."
	}
	absDir, err := filepath.Abs(arg)
	if err != nil {
		log.Fatalf("Invalid directory: %v", err)
	}
	if stat, err := os.Stat(absDir); err != nil || !stat.IsDir() {
		log.Fatalf("Directory does not exist: %s", absDir)
	}
	return absDir
}

func showUsage() {
	fmt.Println("jsondesk - edit the JSON files behind the match API")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  jsondesk serve [-addr host:port] [-open] [directory]")
	fmt.Println("  jsondesk init [-i] [directory]")
	fmt.Println("  jsondesk edit [-server URL] [-config file]")
	fmt.Println("  jsondesk get  [-server URL] [-config file] <file>")
	fmt.Println("  jsondesk put  [-server URL] [-config file] [-in path] <file>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve   Serve the directory's data files, the editor page and the match API")
	fmt.Println("  init    Write a default jsondesk.json and starter data files")
	fmt.Println("  edit    Terminal file editor against a running server")
	fmt.Println("  get     Print a data file exactly as the server returns it")
	fmt.Println("  put     Save stdin (or -in) as a data file")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  jsondesk init ./site && jsondesk serve ./site")
	fmt.Println("  jsondesk get teams.json > teams.json")
	fmt.Println("  jsondesk put teams.json < teams.json")
}

func printServeBanner(dir, cfgPath string, cfg config.Config) {
	_, url := app.NormalizeListenAddr(cfg.Viewer.HTTPAddr)

	fmt.Println("╔════════════════════════════════════════════════════════╗")
	fmt.Println("║                    jsondesk server                     ║")
	fmt.Println("╚════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Directory:   %s\n", dir)
	fmt.Printf("Config File: %s\n", cfgPath)
	fmt.Printf("Editable:    %d files\n", len(cfg.Catalog.Files))
	fmt.Printf("Editor:      %s\n", url)
	fmt.Println()
	fmt.Println("Starting server... (Press Ctrl+C to stop)")
	fmt.Println("────────────────────────────────────────────────────────")
	fmt.Println()
}
