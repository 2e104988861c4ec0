// internal/app/prompt.go

package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/petervdpas/jsondesk/internal/config"
)

// PromptInteractive asks for the settings an operator usually changes and
// returns the edited config. Invalid answers fall back to the defaults.
func PromptInteractive(in io.Reader, out io.Writer, dir, cfgPath string, cfg config.Config) config.Config {
	r := bufio.NewReader(in)

	fmt.Fprintln(out, "────────────────────────────────────────")
	fmt.Fprintln(out, "jsondesk interactive setup")
	fmt.Fprintf(out, " Served folder : %s\n", dir)
	fmt.Fprintf(out, " Config file   : %s\n", cfgPath)
	fmt.Fprintln(out, "────────────────────────────────────────")
	fmt.Fprintln(out)

	cfg.Paths.DataDir = askString(r, out, "Data directory", cfg.Paths.DataDir)
	cfg.Viewer.HTTPAddr = askString(r, out, "HTTP listen addr", cfg.Viewer.HTTPAddr)
	cfg.Catalog.Files = askList(r, out, "Editable files (comma separated)", cfg.Catalog.Files)
	cfg.Viewer.WatchFiles = askBool(r, out, "Push external file changes to editors", cfg.Viewer.WatchFiles)
	cfg.History.Enabled = askBool(r, out, "Keep a save log", cfg.History.Enabled)
	cfg.Client.ServerURL = askString(r, out, "Server URL for the terminal client", cfg.Client.ServerURL)
	cfg.Client.TimeoutSeconds = askInt(r, out, "Client timeout seconds (0=none)", cfg.Client.TimeoutSeconds)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "Invalid config: %v\nKeeping defaults.\n", err)
		return config.Default()
	}
	return cfg
}

func askString(in *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	s, _ := in.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func askList(in *bufio.Reader, out io.Writer, label string, def []string) []string {
	s := askString(in, out, label, strings.Join(def, ","))
	var list []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			list = append(list, f)
		}
	}
	return list
}

func askInt(in *bufio.Reader, out io.Writer, label string, def int) int {
	for {
		fmt.Fprintf(out, "%s [%d]: ", label, def)
		s, err := in.ReadString('\n')
		s = strings.TrimSpace(s)
		if s == "" {
			return def
		}
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
		if err != nil {
			return def
		}
		fmt.Fprintln(out, "Please enter a number.")
	}
}

func askBool(in *bufio.Reader, out io.Writer, label string, def bool) bool {
	defStr := "n"
	if def {
		defStr = "y"
	}
	for {
		fmt.Fprintf(out, "%s [y/n] (default=%s): ", label, defStr)
		s, err := in.ReadString('\n')
		s = strings.TrimSpace(strings.ToLower(s))
		if s == "" {
			return def
		}
		switch s {
		case "y", "yes", "true", "1":
			return true
		case "n", "no", "false", "0":
			return false
		}
		if err != nil {
			return def
		}
		fmt.Fprintln(out, "Please enter y or n.")
	}
}
