// internal/app/helpers.go

package app

import (
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// NormalizeListenAddr fills in a loopback host for ":port" addresses and
// returns the listen address with the URL a browser should open.
// An explicit host, including 0.0.0.0, is kept as given.
func NormalizeListenAddr(cfgAddr string) (listenAddr string, url string) {
	a := strings.TrimSpace(cfgAddr)
	if strings.HasPrefix(a, ":") {
		a = "127.0.0.1" + a
	}
	listenAddr = a

	browse := a
	if strings.HasPrefix(browse, "0.0.0.0:") {
		browse = "127.0.0.1:" + strings.TrimPrefix(browse, "0.0.0.0:")
	}
	url = "http://" + browse
	return
}

// OpenBrowser opens the system default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}

func teeLog(w io.Writer) io.Writer {
	return io.MultiWriter(os.Stderr, w)
}

func logBanner(dir, cfgPath string) {
	log.Println("────────────────────────────────────────")
	log.Println("jsondesk server")
	log.Printf(" Served folder : %s", dir)
	log.Printf(" Config file   : %s", cfgPath)
	log.Println("────────────────────────────────────────")
}
