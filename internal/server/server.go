// Package server exposes the intake session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"denuncias-go/internal/config"
	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/report"
	"denuncias-go/internal/types"
)

const maxBody = 1 << 20

// Session is the intake state the handlers drive.
type Session interface {
	Analyze(ctx context.Context, text string) (types.Complaint, error)
	Current() (types.Complaint, bool)
	Edit(p types.Patch) (types.Complaint, error)
	Rewrite(ctx context.Context) (types.Complaint, error)
	Translate(ctx context.Context, text, lang string) (string, error)
	Plan(ctx context.Context) (string, error)
	Forward(ctx context.Context) error
	Report() (report.Texts, error)
}

// Credentials reads and stores the API key and webhook URL.
type Credentials interface {
	Resolve() config.Effective
	Save(apiKey, scriptURL string) error
	UsingStaticKey() bool
}

type Server struct {
	session Session
	creds   Credentials
	log     *logger.Logger
}

func New(session Session, creds Credentials, log *logger.Logger) *Server {
	return &Server{session: session, creds: creds, log: log.Component("api")}
}

// Routes returns the API mux wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /config", s.getConfig)
	mux.HandleFunc("POST /config", s.saveConfig)

	mux.HandleFunc("POST /analyze", s.analyze)
	mux.HandleFunc("GET /record", s.record)
	mux.HandleFunc("PATCH /record", s.edit)
	mux.HandleFunc("POST /record/rewrite", s.rewrite)
	mux.HandleFunc("POST /record/plan", s.plan)
	mux.HandleFunc("GET /record/report", s.report)

	mux.HandleFunc("POST /translate", s.translate)
	mux.HandleFunc("POST /forward", s.forward)

	return s.withRequestLog(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := logger.RequestID(r)
		r.Header.Set(logger.RequestIDHeader, id)
		w.Header().Set(logger.RequestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.WithRequest(r).
			WithField("status", rec.status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Info("request handled")
	})
}

// ConfigView never carries the key itself.
type ConfigView struct {
	APIKeyConfigured bool   `json:"api_key_configured"`
	ScriptURL        string `json:"script_url"`
	UsingStaticKey   bool   `json:"using_static_key"`
}

func (s *Server) configView() ConfigView {
	eff := s.creds.Resolve()
	return ConfigView{
		APIKeyConfigured: eff.HasAPIKey(),
		ScriptURL:        eff.ScriptURL,
		UsingStaticKey:   s.creds.UsingStaticKey(),
	}
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.configView())
}

type configRequest struct {
	APIKey    string `json:"api_key"`
	ScriptURL string `json:"script_url"`
}

func (s *Server) saveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.creds.Save(req.APIKey, req.ScriptURL); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.configView())
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// RecordResponse pairs a record with its rendered texts.
type RecordResponse struct {
	Record types.Complaint `json:"record"`
	Report report.Texts    `json:"report"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}
	rec, err := s.session.Analyze(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec, Report: report.Render(rec)})
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.session.Current()
	if !ok {
		s.fail(w, r, apperrors.NewNoData("no hay una denuncia analizada"))
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec, Report: report.Render(rec)})
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	var p types.Patch
	if !s.decode(w, r, &p) {
		return
	}
	rec, err := s.session.Edit(p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec, Report: report.Render(rec)})
}

func (s *Server) rewrite(w http.ResponseWriter, r *http.Request) {
	rec, err := s.session.Rewrite(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Record: rec, Report: report.Render(rec)})
}

func (s *Server) plan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.session.Plan(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	texts, err := s.session.Report()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, texts)
}

type translateRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.session.Translate(r.Context(), req.Text, req.Lang)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translation": out})
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Forward(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	rec, _ := s.session.Current()
	writeJSON(w, http.StatusOK, map[string]any{"forwarded": true, "id": rec.ID})
}

// decode reads a JSON body. An empty body decodes as the zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	s.log.WithRequest(r).WithField("error", err.Error()).Warn("bad request body")
	writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
	return false
}

// StatusFor maps the error taxonomy onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrStaleRecord):
		return http.StatusConflict
	case apperrors.IsConfigMissing(err):
		return http.StatusPreconditionFailed
	case apperrors.IsNoData(err):
		return http.StatusConflict
	case apperrors.IsUpstream(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	entry := s.log.WithRequest(r).WithField("error", err.Error()).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
