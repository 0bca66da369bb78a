package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CampusEvents/internal/domain"
	"CampusEvents/internal/ports"
	"CampusEvents/internal/usecase"
)

// Server exposes the dashboard, the manual pipeline triggers and the
// events API. The core pipeline never surfaces errors to end users
// directly; unexpected failures become a generic 500 here.
type Server struct {
	pipeline *usecase.Pipeline
	posts    ports.PostRepository
	events   ports.EventRepository
	logger   *slog.Logger
	http     *http.Server
}

// New builds the HTTP server on the given listen address.
func New(addr string, pipeline *usecase.Pipeline, posts ports.PostRepository, events ports.EventRepository, logger *slog.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		posts:    posts,
		events:   events,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/run-process", s.handleRunProcess)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/api/events", s.handleListEvents)
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleRunProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Run(r.Context()); err != nil {
		s.logger.Error("manual pipeline run failed", "error", err)
		http.Error(w, "pipeline run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Success! Scrape and extraction complete."))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.posts.ResetAllProcessed(ctx); err != nil {
		s.logger.Error("reset processed flags failed", "error", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}
	if err := s.events.DeleteAll(ctx); err != nil {
		s.logger.Error("delete events failed", "error", err)
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Database reset. You can now run the process again."))
}

// eventJSON is the wire shape of one event in the listing API.
type eventJSON struct {
	ID          int64  `json:"id"`
	PostID      string `json:"post_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	EventDate   string `json:"event_date,omitempty"`
	EventTime   string `json:"event_time,omitempty"`
	PostURL     string `json:"post_url"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.ListByDate(r.Context())
	if err != nil {
		s.logger.Error("list events failed", "error", err)
		http.Error(w, "list events failed", http.StatusInternalServerError)
		return
	}

	payload := make([]eventJSON, 0, len(events))
	for _, event := range events {
		payload = append(payload, eventJSON{
			ID:          event.ID,
			PostID:      event.PostID,
			Title:       event.Title,
			Description: event.Description,
			EventDate:   event.Date,
			EventTime:   event.Time,
			PostURL:     event.PostURL,
			CreatedAt:   event.CreatedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode events failed", "error", err)
	}
}

type dashboardData struct {
	Counts domain.PostCounts
	Events []domain.Event
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx := r.Context()
	counts, err := s.posts.Counts(ctx)
	if err != nil {
		s.logger.Error("load counts failed", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}

	// The dashboard shows freshest extractions first; the events API
	// keeps event-date ordering.
	events, err := s.events.ListRecent(ctx)
	if err != nil {
		s.logger.Error("list events failed", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, dashboardData{Counts: counts, Events: events}); err != nil {
		s.logger.Error("render dashboard failed", "error", err)
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Campus Events</title>
	<style>
		body { font-family: sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; background: #f9f9f9; }
		.stats { background: #eee; padding: 10px; border-radius: 4px; margin-bottom: 20px; font-size: 0.9em; }
		.event { background: white; border: 1px solid #ddd; padding: 15px; margin-bottom: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.05); }
		.date { color: #007bff; font-weight: bold; }
		.btn { padding: 10px 20px; background: #007bff; color: white; border: none; cursor: pointer; border-radius: 4px; font-weight: bold; }
		.btn:disabled { background: #ccc; }
	</style>
</head>
<body>
	<h1>Campus Events</h1>

	<div class="stats">
		<b>Database Status:</b> {{.Counts.Total}} Scraped Posts | {{.Counts.Pending}} Waiting for Extraction
	</div>

	<button id="refreshBtn" onclick="runProcess()" class="btn">Refresh/Scrape Now</button>
	<p id="statusMsg"></p>

	<div id="events-list">
		{{if not .Events}}<p>No events extracted yet.</p>{{end}}
		{{range .Events}}
		<div class="event">
			<h2>{{if .Title}}{{.Title}}{{else}}Extracted Event{{end}}</h2>
			<p class="date">{{if .Date}}{{.Date}}{{else}}TBD{{end}} at {{if .Time}}{{.Time}}{{else}}TBD{{end}}</p>
			<p>{{if .Description}}{{.Description}}{{else}}No description extracted.{{end}}</p>
			<a href="{{.PostURL}}" target="_blank">View Original Post</a>
		</div>
		{{end}}
	</div>

	<script>
		async function runProcess() {
			const btn = document.getElementById('refreshBtn');
			const msg = document.getElementById('statusMsg');
			btn.disabled = true;
			msg.innerText = 'Scraping and extracting... this can take a minute, the page will reload.';

			try {
				await fetch('/run-process');
				location.reload();
			} catch (e) {
				console.error(e);
				msg.innerText = 'The request is taking a while. Please wait a minute and refresh manually.';
			}
		}
	</script>
</body>
</html>
`))
