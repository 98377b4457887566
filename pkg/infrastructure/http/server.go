package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vsinha/gestionale/pkg/infrastructure/events"
)

// EventReader is the read side of the event store served at /events
type EventReader interface {
	ReadAllEvents(fromPosition int) ([]events.Event, error)
}

type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// New serves /health and, when non-nil, metrics at metricsPath and the
// event log at /events
func New(addr, metricsPath string, gatherer prometheus.Gatherer, eventLog EventReader, logger *slog.Logger) *Server {
	mux := NewMux(metricsPath, gatherer, eventLog)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// NewMux builds the handler tree without binding a listener
func NewMux(metricsPath string, gatherer prometheus.Gatherer, eventLog EventReader) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if gatherer != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if eventLog != nil {
		mux.HandleFunc("/events", eventsHandler(eventLog))
	}

	return mux
}

// eventsHandler lists events in publication order as JSON, starting at the
// zero-based position given by the from query parameter
func eventsHandler(eventLog EventReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from := 0
		if raw := r.URL.Query().Get("from"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "from must be a non-negative integer", http.StatusBadRequest)
				return
			}
			from = n
		}

		list, err := eventLog.ReadAllEvents(from)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// Start blocks serving until Shutdown
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
