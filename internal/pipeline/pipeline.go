// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"denuncias-go/internal/report"
	"denuncias-go/internal/types"
)

// Session is the part of processor.Session a run drives.
type Session interface {
	Analyze(ctx context.Context, text string) (types.Complaint, error)
	Rewrite(ctx context.Context) (types.Complaint, error)
	Plan(ctx context.Context) (string, error)
	Translate(ctx context.Context, text, lang string) (string, error)
	Forward(ctx context.Context) error
	Current() (types.Complaint, bool)
	Report() (report.Texts, error)
}

// Options selects the optional steps after analysis.
type Options struct {
	Rewrite     bool
	Plan        bool
	TranslateTo string // language code or name; empty skips translation
	Forward     bool
}

// Result collects what a run produced.
type Result struct {
	Record      types.Complaint `json:"record"`
	Report      report.Texts    `json:"report"`
	Plan        string          `json:"plan,omitempty"`
	Translation string          `json:"translation,omitempty"`
	Forwarded   bool            `json:"forwarded"`
	Warnings    []string        `json:"warnings,omitempty"`
	DurationMs  int64           `json:"duration_ms"`
}

// Run analyzes text and then runs the selected steps in order: rewrite,
// plan, translate, forward.
//
// A failed analysis aborts. A failed refinement is recorded in Warnings and
// the run continues. A failed forward is returned with the partial result.
func Run(ctx context.Context, s Session, text string, opts Options) (Result, error) {
	start := time.Now()
	var res Result
	finish := func() {
		if rec, ok := s.Current(); ok {
			res.Record = rec
		}
		if texts, err := s.Report(); err == nil {
			res.Report = texts
		}
		res.DurationMs = time.Since(start).Milliseconds()
	}

	if _, err := s.Analyze(ctx, text); err != nil {
		res.DurationMs = time.Since(start).Milliseconds()
		return res, fmt.Errorf("analyze: %w", err)
	}

	if opts.Rewrite {
		if _, err := s.Rewrite(ctx); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("rewrite: %v", err))
		}
	}
	if opts.Plan {
		plan, err := s.Plan(ctx)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("plan: %v", err))
		}
		res.Plan = plan
	}
	if opts.TranslateTo != "" {
		out, err := s.Translate(ctx, "", opts.TranslateTo)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("translate: %v", err))
		}
		res.Translation = out
	}
	if opts.Forward {
		if err := s.Forward(ctx); err != nil {
			finish()
			return res, fmt.Errorf("forward: %w", err)
		}
		res.Forwarded = true
	}

	finish()
	return res, nil
}
