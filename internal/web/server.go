// Package web serves a minimal browser UI over the scan engine: a form
// to pick a directory and policy, and the rendered HTML report.
package web

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/internal/engine"
	"github.com/smolin/dupscan/internal/report"
	"go.uber.org/zap"
)

// Server is the web UI server
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	srv    *http.Server
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}
	s.srv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, separate from the listener so tests
// can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/scan", s.handleScan)
	return mux
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("listen", s.cfg.Listen))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

// handleScan runs a blocking scan for the submitted directory and
// responds with the full report page. Directory dedupe is always on
// here; the form only chooses the equality policy.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.FormValue("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	policy := r.FormValue("policy")
	if policy != "structural" {
		policy = "multiset"
	}

	cfg := *s.cfg
	cfg.Policy = policy
	cfg.EnableDirs()

	s.logger.Info("Web scan requested",
		zap.String("path", path),
		zap.String("policy", policy))

	result, err := engine.New(&cfg, s.logger).Scan(r.Context(), path)
	if err != nil && result.HasFatal() {
		s.logger.Warn("Web scan failed", zap.String("path", path), zap.Error(err))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, errorPage, html.EscapeString(err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, report.RenderHTML(result))
}

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Dupscan</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
            background: #0C0C0C; color: #ECECEC;
            display: flex; justify-content: center; padding-top: 10vh;
        }
        form {
            background: #161616; border: 1px solid #2A2A2A; border-radius: 8px;
            padding: 32px; width: 480px;
        }
        h1 { color: #0891B2; font-size: 28px; margin: 0 0 4px; }
        p { color: #A0A0A0; font-size: 14px; margin: 0 0 24px; }
        label { display: block; font-size: 13px; color: #A0A0A0; margin-bottom: 6px; }
        input, select {
            width: 100%; box-sizing: border-box; padding: 10px;
            background: #0A0A0A; color: #ECECEC;
            border: 1px solid #2A2A2A; border-radius: 4px;
            font-size: 14px; margin-bottom: 18px;
        }
        button {
            width: 100%; padding: 12px; border: none; border-radius: 4px;
            background: #0891B2; color: #fff; font-size: 15px; cursor: pointer;
        }
        button:hover { background: #06B6D4; }
    </style>
</head>
<body>
    <form method="post" action="/scan">
        <h1>Dupscan</h1>
        <p>Find duplicate files and directories</p>
        <label for="path">Directory to scan</label>
        <input type="text" id="path" name="path" placeholder="/data/photos" required>
        <label for="policy">Directory equality</label>
        <select id="policy" name="policy">
            <option value="multiset">Content only (names ignored)</option>
            <option value="structural">Content and layout</option>
        </select>
        <button type="submit">Scan</button>
    </form>
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Dupscan - Error</title>
<style>
    body { font-family: sans-serif; background: #0C0C0C; color: #ECECEC; padding: 10vh 20vw; }
    .box { background: #2A1515; border: 1px solid #EF4444; border-radius: 8px; padding: 24px; }
    h1 { color: #EF4444; font-size: 20px; margin-top: 0; }
    a { color: #0891B2; }
</style>
</head>
<body>
    <div class="box">
        <h1>Scan failed</h1>
        <p>%s</p>
        <p><a href="/">Back</a></p>
    </div>
</body>
</html>
`
