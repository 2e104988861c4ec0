// internal/ui/assets/assets.go

package assets

import (
	"embed"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Everything served under /assets/.
//
//go:embed app.css app.js
var rawFS embed.FS

var minified map[string][]byte

func init() {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	minified = make(map[string][]byte)

	_ = fs.WalkDir(rawFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		raw, err := rawFS.ReadFile(p)
		if err != nil {
			return nil
		}
		mt := mediaType(p)
		if mt == "" {
			minified[p] = raw
			return nil
		}
		out, err := m.Bytes(mt, raw)
		if err != nil {
			log.Printf("assets: minify warning: %s: %v (using original)", p, err)
			minified[p] = raw
			return nil
		}
		minified[p] = out
		return nil
	})
}

func mediaType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	}
	return ""
}

// Handler serves the minified assets. Mount it at /assets/ with a StripPrefix.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/")
		data, ok := minified[p]
		if !ok {
			http.NotFound(w, r)
			return
		}
		ct := mime.TypeByExtension(path.Ext(p))
		if mt := mediaType(p); mt != "" {
			ct = mt + "; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = w.Write(data)
	})
}
