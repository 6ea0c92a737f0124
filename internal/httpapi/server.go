package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimereport/internal/domain"
	apimw "github.com/hamed0406/uptimereport/internal/httpapi/middleware"
	"github.com/hamed0406/uptimereport/internal/probe"
	"github.com/hamed0406/uptimereport/internal/registry"
	"github.com/hamed0406/uptimereport/internal/render"
	"github.com/hamed0406/uptimereport/internal/report"
	"github.com/hamed0406/uptimereport/internal/repo"
	"github.com/hamed0406/uptimereport/internal/uptime"
)

type Server struct {
	Logger   *zap.Logger
	Targets  registry.Lister
	Reports  repo.ReportStore
	Service  *report.Service
	Location *time.Location

	// Optional: enable POST /api/targets/{key}/check.
	Checker probe.Checker
	Checks  repo.CheckStore

	// Optional: enable POST /api/refresh.
	Refresh func(ctx context.Context) error
}

func NewServer(l *zap.Logger, targets registry.Lister, reports repo.ReportStore, svc *report.Service, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	return &Server{Logger: l, Targets: targets, Reports: reports, Service: svc, Location: loc}
}

// Router wires the routes. Read routes need a public (or admin) key and share
// the public rate limit; write routes need an admin key.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()

	corsOpts := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}
	if len(allowedOrigins) > 0 {
		corsOpts.AllowedOrigins = allowedOrigins
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(pubRPM, pubBurst))
		r.Use(apimw.RequireAny(keys))

		r.Get("/api/targets", s.handleListTargets)
		r.Get("/api/reports", s.handleListReports)
		r.Get("/api/reports/{key}", s.handleReport)
		r.Get("/api/reports/{key}/stream", s.handleStream)
		r.Get("/api/reports/{key}/chart.png", s.handleChart)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(admRPM, admBurst))
		r.Use(apimw.RequireAdmin(keys))

		r.Post("/api/refresh", s.handleRefresh)
		r.Post("/api/targets/{key}/check", s.handleCheckNow)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts, err := s.Targets.List(r.Context())
	if err != nil {
		s.Logger.Warn("targets_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if ts == nil {
		ts = []domain.Target{}
	}
	writeJSON(w, http.StatusOK, ts)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reps, err := s.Reports.List(r.Context())
	if err != nil {
		s.Logger.Warn("reports_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if reps == nil {
		reps = []*domain.Report{}
	}
	writeJSON(w, http.StatusOK, reps)
}

// report returns the cached report for the URL key, building and caching it
// on a miss. It writes the error response itself and returns nil then.
func (s *Server) report(w http.ResponseWriter, r *http.Request) *domain.Report {
	ctx := r.Context()
	key := domain.TargetKey(chi.URLParam(r, "key"))

	ts, err := s.Targets.List(ctx)
	if err != nil {
		s.Logger.Warn("targets_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return nil
	}
	if _, ok := registry.Find(ts, key); !ok {
		writeError(w, http.StatusNotFound, "unknown target")
		return nil
	}

	if cached, err := s.Reports.Get(ctx, key); err == nil && cached != nil {
		return cached
	}

	rep, err := s.Service.BuildKey(ctx, ts, key)
	var pe *uptime.ParseError
	switch {
	case errors.Is(err, report.ErrUnknownTarget):
		writeError(w, http.StatusNotFound, "unknown target")
		return nil
	case errors.As(err, &pe):
		s.Logger.Warn("report_parse_error", zap.String("target", string(key)), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, pe.Error())
		return nil
	case err != nil:
		s.Logger.Warn("report_build_error", zap.String("target", string(key)), zap.Error(err))
		writeError(w, http.StatusBadGateway, "log source unavailable")
		return nil
	}
	if err := s.Reports.Put(ctx, &rep); err != nil {
		s.Logger.Warn("report_cache_error", zap.String("target", string(key)), zap.Error(err))
	}
	return &rep
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if rep := s.report(w, r); rep != nil {
		writeJSON(w, http.StatusOK, rep)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if rep := s.report(w, r); rep != nil {
		writeJSON(w, http.StatusOK, render.NewCard(*rep, s.Location))
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	rep := s.report(w, r)
	if rep == nil {
		return
	}
	var buf bytes.Buffer
	if err := render.Chart(&buf, render.NewCard(*rep, s.Location)); err != nil {
		s.Logger.Warn("chart_render_error", zap.String("target", string(rep.Target.Key)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chart error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=60")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.Refresh == nil {
		writeError(w, http.StatusNotImplemented, "refresh disabled")
		return
	}
	if err := s.Refresh(r.Context()); err != nil {
		// partial refreshes still updated the targets that worked
		writeJSON(w, http.StatusOK, map[string]any{"refreshed": true, "errors": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"refreshed": true})
}

// handleCheckNow probes a target once and appends the result to its log.
func (s *Server) handleCheckNow(w http.ResponseWriter, r *http.Request) {
	if s.Checker == nil || s.Checks == nil {
		writeError(w, http.StatusNotImplemented, "checks disabled")
		return
	}
	ctx := r.Context()
	key := domain.TargetKey(chi.URLParam(r, "key"))

	ts, err := s.Targets.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	t, ok := registry.Find(ts, key)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown target")
		return
	}
	if !isValidHTTPURL(t.URL) {
		writeError(w, http.StatusUnprocessableEntity, "target url is not http(s)")
		return
	}

	out := s.Checker.Check(ctx, t.URL)
	if err := s.Checks.Append(ctx, key, out.Record()); err != nil {
		s.Logger.Warn("check_append_error", zap.String("target", string(key)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not record check")
		return
	}
	// the cached report is stale now
	if rep, err := s.Service.Build(ctx, t); err == nil {
		_ = s.Reports.Put(ctx, &rep)
	}

	s.Logger.Info("checked_target",
		zap.String("target", string(key)),
		zap.Bool("up", out.Success),
		zap.Int("status", out.StatusCode),
		zap.Float64("latency_ms", out.LatencyMS),
	)
	writeJSON(w, http.StatusOK, map[string]any{"target": t, "result": out})
}

func isValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
