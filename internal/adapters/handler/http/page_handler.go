package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/slotpoll/api/internal/core/domain"
)

// PageHandler serves the server-rendered poll view. It reads the poll back
// through the public JSON API rather than the repositories, so the page sees
// exactly what API clients see.
type PageHandler struct {
	client *http.Client
	logger *zap.Logger
}

func NewPageHandler(logger *zap.Logger) *PageHandler {
	return &PageHandler{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// baseURL builds an absolute URL from the incoming request's host, using
// plain http only for loopback/local hosts.
func baseURL(r *http.Request) string {
	host := r.Host
	if host == "" {
		return "http://localhost:8080"
	}

	scheme := "https"
	if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

func (h *PageHandler) PollPage(w http.ResponseWriter, r *http.Request) {
	pollID := chi.URLParam(r, "id")

	url := fmt.Sprintf("%s/api/poll/%s", baseURL(r), pollID)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		h.renderError(w)
		return
	}

	res, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("failed to fetch poll for page", zap.String("url", url), zap.Error(err))
		h.renderError(w)
		return
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		h.renderNotFound(w)
		return
	}
	if res.StatusCode != http.StatusOK {
		h.logger.Error("unexpected status fetching poll for page",
			zap.String("url", url),
			zap.Int("status", res.StatusCode))
		h.renderError(w)
		return
	}

	var poll domain.Poll
	if err := json.NewDecoder(res.Body).Decode(&poll); err != nil {
		h.logger.Error("failed to decode poll for page", zap.Error(err))
		h.renderError(w)
		return
	}

	view := domain.BuildPollView(&poll)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pollPageTmpl.Execute(w, pollPageData{View: view, ShareURL: fmt.Sprintf("%s/poll/%s", baseURL(r), poll.ID)}); err != nil {
		h.logger.Error("failed to render poll page", zap.Error(err))
	}
}

func (h *PageHandler) renderNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	notFoundTmpl.Execute(w, nil)
}

func (h *PageHandler) renderError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	errorTmpl.Execute(w, nil)
}

type pollPageData struct {
	View     domain.PollView
	ShareURL string
}

var pollPageTmpl = template.Must(template.New("poll").Funcs(template.FuncMap{
	"slotLabel": func(t time.Time) string {
		return t.Format("Mon, Jan 2 2006 15:04")
	},
	"pct": func(p float64) string {
		return fmt.Sprintf("%.0f", p)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.View.Title}}</title>
</head>
<body>
<main>
  <header>
    <h1>{{.View.Title}}</h1>
    {{if .View.Description}}<p>{{.View.Description}}</p>{{end}}
    <p>Participants: {{.View.TotalVoters}} people</p>
  </header>
  <section>
    {{range .View.Options}}
    <article>
      <h3>{{slotLabel .Time}}</h3>
      <p>{{.VoteCount}} / {{$.View.TotalVoters}} votes ({{pct .Percentage}}%)</p>
      {{if .Voters}}
      <ul>
        {{range .Voters}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
    </article>
    {{end}}
  </section>
  <footer>
    <p>Share this poll: <a href="{{.ShareURL}}">{{.ShareURL}}</a></p>
  </footer>
</main>
</body>
</html>
`))

var notFoundTmpl = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Poll not found</title></head>
<body><main><h1>Poll not found</h1><p>This poll does not exist or its link is wrong.</p></main></body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Something went wrong</title></head>
<body><main><h1>Something went wrong</h1><p>The poll could not be loaded. Please try again later.</p></main></body>
</html>
`))
