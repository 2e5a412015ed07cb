package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/gemini"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"

	"github.com/xeipuuv/gojsonschema"
)

// Generator is the slice of the Gemini client the extractor needs.
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// Extractor turns free complaint text into a types.Complaint.
type Extractor struct {
	gen    Generator
	now    func() time.Time
	schema *gojsonschema.Schema
	log    *logger.Logger
}

func New(gen Generator, log *logger.Logger) *Extractor {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(validationSchema))
	if err != nil {
		// built from constants
		panic(fmt.Sprintf("extractor: invalid validation schema: %v", err))
	}
	return &Extractor{
		gen:    gen,
		now:    time.Now,
		schema: schema,
		log:    log.Component("extractor"),
	}
}

// WithClock overrides the clock used for the default date.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract sends raw to the model and returns the nine fields.
//
// A reply that is not JSON, misses a field or carries a non-string value is
// an UpstreamError. Keys outside the nine are dropped.
func (e *Extractor) Extract(ctx context.Context, raw string) (types.Complaint, error) {
	text, err := e.gen.Generate(ctx, gemini.Request{
		Prompt: raw,
		System: BuildSystemPrompt(e.now()),
		Schema: responseSchema(),
	})
	if err != nil {
		return types.Complaint{}, err
	}

	body := extractJSON(text)
	result, err := e.schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		e.log.WithError(err).Warn("extraction reply is not JSON")
		return types.Complaint{}, apperrors.NewUpstream("extraction reply is not valid JSON", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		e.log.WithField("problems", problems).Warn("extraction reply failed schema")
		return types.Complaint{}, apperrors.NewUpstream(
			"extraction reply does not match schema: "+strings.Join(problems, "; "), nil)
	}

	var c types.Complaint
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		return types.Complaint{}, apperrors.NewUpstream("decode extraction reply", err)
	}
	// enrichment owns these
	c.ID, c.Status = "", ""
	e.log.WithField("categoria", c.Categoria).WithField("urgencia", c.Urgencia).Info("complaint extracted")
	return c, nil
}

// extractJSON strips a surrounding markdown fence, if any.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string (```json)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
