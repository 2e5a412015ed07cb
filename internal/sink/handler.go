// Package sink serves the spreadsheet logging endpoint that records are
// forwarded to. It appends one row per POST and answers with a small JSON
// envelope.
package sink

import (
	"encoding/json"
	"net/http"
	"time"

	"denuncias-go/internal/aggregator"
	"denuncias-go/internal/dataset"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"

	"github.com/rotisserie/eris"
)

// SavedMessage is returned on a successful append.
const SavedMessage = "Denuncia guardada correctamente"

const maxBody = 1 << 20

// Sheet is the storage behind the handler.
type Sheet interface {
	Append(c types.Complaint, at time.Time) error
	Rows() ([]dataset.Row, error)
}

// Envelope is the reply to every POST.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Handler struct {
	sheet Sheet
	now   func() time.Time
	log   *logger.Logger
}

func NewHandler(sheet Sheet, log *logger.Logger) *Handler {
	return &Handler{sheet: sheet, now: time.Now, log: log.Component("sink")}
}

// Routes returns the mux for the sink.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", h.append)
	mux.HandleFunc("GET /summary", h.summary)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (h *Handler) append(w http.ResponseWriter, r *http.Request) {
	reqLog := h.log.WithRequest(r)

	var c types.Complaint
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&c); err != nil {
		reqLog.WithField("error", err.Error()).Warn("bad sink payload")
		writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Error: eris.Wrap(err, "invalid JSON body").Error()})
		return
	}

	if err := h.sheet.Append(c, h.now()); err != nil {
		reqLog.WithField("error", err.Error()).Error("append failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Error: err.Error()})
		return
	}

	reqLog.WithField("id", c.ID).Info("row saved")
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: SavedMessage, ID: c.ID})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.sheet.Rows()
	if err != nil {
		h.log.WithRequest(r).WithField("error", err.Error()).Error("read rows failed")
		writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, aggregator.Summarize(rows))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
