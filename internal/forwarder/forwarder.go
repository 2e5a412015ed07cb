// Package forwarder posts finished records to the logging webhook.
//
// Delivery is fire-and-forget. Any HTTP status counts as dispatched and the
// response body is discarded unread. Only a failure to dispatch (DNS,
// connection, context) is reported. Calling Forward twice appends twice.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"
)

type Forwarder struct {
	http *http.Client
	log  *logger.Logger
}

// New returns a forwarder. Zero timeout means no client-side timeout.
func New(timeout time.Duration, log *logger.Logger) *Forwarder {
	return &Forwarder{
		http: &http.Client{Timeout: timeout},
		log:  log.Component("forwarder"),
	}
}

// Forward posts rec as JSON to endpoint.
func (f *Forwarder) Forward(ctx context.Context, endpoint string, rec types.Complaint) error {
	if endpoint == "" {
		return apperrors.NewConfigMissing("GOOGLE_SCRIPT_URL")
	}
	if rec.ID == "" {
		return apperrors.NewNoData("no analyzed record to send")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewUpstream("build webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log := f.log.WithField("id", rec.ID)
	resp, err := f.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("webhook dispatch failed")
		return apperrors.NewUpstream("webhook dispatch failed", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	log.WithField("http_status", resp.StatusCode).Debug("webhook response ignored")
	log.Info("record forwarded")
	return nil
}
