// internal/processor/session.go
package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"denuncias-go/internal/config"
	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/gemini"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/report"
	"denuncias-go/internal/types"
)

const (
	rewriteSystem   = "Eres un redactor técnico."
	translateSystem = "Eres un traductor oficial."
)

// Languages maps the short codes accepted by Translate to the name used in
// the prompt. Other values are passed through as a language name.
var Languages = map[string]string{
	"en": "Inglés",
	"fr": "Francés",
	"pt": "Portugués",
	"de": "Alemán",
}

// DefaultLanguage is used when Translate gets no target.
const DefaultLanguage = "en"

type Extractor interface {
	Extract(ctx context.Context, raw string) (types.Complaint, error)
}

type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

type Planner interface {
	Generate(ctx context.Context, c types.Complaint) (string, error)
}

type Forwarder interface {
	Forward(ctx context.Context, endpoint string, rec types.Complaint) error
}

// Credentials resolves the effective configuration at call time.
type Credentials interface {
	Resolve() config.Effective
}

// Deps are the collaborators of a Session.
type Deps struct {
	Extractor   Extractor
	Generator   Generator
	Planner     Planner
	Forwarder   Forwarder
	Credentials Credentials
	Enricher    Enricher
}

// Session holds the record currently being worked on.
//
// All methods are safe for concurrent use. The lock only guards the record
// slot and is never held across a remote call, so two overlapping analyses
// resolve as last-response-wins.
type Session struct {
	deps Deps
	log  *logger.Logger

	mu      sync.Mutex
	current types.Complaint
}

func NewSession(deps Deps, log *logger.Logger) *Session {
	if deps.Enricher.Now == nil || deps.Enricher.IntN == nil {
		deps.Enricher = NewEnricher()
	}
	return &Session{deps: deps, log: log.Component("session")}
}

// Current returns the record and whether one exists.
func (s *Session) Current() (types.Complaint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current.HasRecord()
}

func (s *Session) snapshot() (types.Complaint, error) {
	c, ok := s.Current()
	if !ok {
		return types.Complaint{}, apperrors.NewNoData("no hay una denuncia analizada")
	}
	return c, nil
}

// Analyze extracts and enriches text, replacing the current record.
// On failure the current record is kept.
func (s *Session) Analyze(ctx context.Context, text string) (types.Complaint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Complaint{}, apperrors.ErrEmptyInput
	}

	start := time.Now()
	extracted, err := s.deps.Extractor.Extract(ctx, text)
	if err != nil {
		s.log.WithError(err).Warn("analysis failed")
		return types.Complaint{}, err
	}
	rec := s.deps.Enricher.Enrich(extracted)

	s.mu.Lock()
	s.current = rec
	s.mu.Unlock()

	s.log.WithField("id", rec.ID).
		WithField("categoria", rec.Categoria).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("complaint analyzed")
	return rec, nil
}

// Edit applies operator changes to the current record.
func (s *Session) Edit(p types.Patch) (types.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current.HasRecord() {
		return types.Complaint{}, apperrors.NewNoData("no hay una denuncia analizada")
	}
	s.current = p.Apply(s.current)
	return s.current, nil
}

// RewritePrompt asks for a technical rewording of a description.
func RewritePrompt(peticion string) string {
	return fmt.Sprintf("Reescribe esta queja ciudadana en lenguaje técnico profesional para un ingeniero civil o jefe de cuadrilla, siendo conciso y claro: \"%s\"", peticion)
}

// Rewrite replaces the description of the current record with a technical
// version. If the record is replaced while the call is in flight the reply
// is dropped and ErrStaleRecord is returned.
func (s *Session) Rewrite(ctx context.Context) (types.Complaint, error) {
	rec, err := s.snapshot()
	if err != nil {
		return types.Complaint{}, err
	}

	out, err := s.deps.Generator.Generate(ctx, gemini.Request{
		Prompt: RewritePrompt(rec.Peticion),
		System: rewriteSystem,
	})
	if err != nil {
		s.log.WithError(err).WithField("id", rec.ID).Warn("rewrite failed")
		return types.Complaint{}, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return types.Complaint{}, apperrors.NewUpstream("rewrite reply is empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.ID != rec.ID {
		s.log.WithField("id", rec.ID).WithField("current_id", s.current.ID).Warn("dropping rewrite for replaced record")
		return types.Complaint{}, apperrors.ErrStaleRecord
	}
	s.current.Peticion = out
	return s.current, nil
}

// TranslatePrompt asks for text in the named language.
func TranslatePrompt(language, text string) string {
	return fmt.Sprintf("Traduce esto al %s: \n%s", language, text)
}

// LanguageName resolves a code such as "en" to its prompt name.
func LanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = DefaultLanguage
	}
	if name, ok := Languages[strings.ToLower(lang)]; ok {
		return name
	}
	return lang
}

// Translate returns text in lang. With empty text the citizen response of the
// current record is translated. The record is never modified.
func (s *Session) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		rec, err := s.snapshot()
		if err != nil {
			return "", err
		}
		text = report.CitizenResponse(rec)
	}

	out, err := s.deps.Generator.Generate(ctx, gemini.Request{
		Prompt: TranslatePrompt(LanguageName(lang), text),
		System: translateSystem,
	})
	if err != nil {
		s.log.WithError(err).WithField("lang", lang).Warn("translation failed")
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Plan returns a three step action plan for the current record.
func (s *Session) Plan(ctx context.Context) (string, error) {
	rec, err := s.snapshot()
	if err != nil {
		return "", err
	}
	return s.deps.Planner.Generate(ctx, rec)
}

// Forward sends the current record to the logging webhook resolved now.
func (s *Session) Forward(ctx context.Context) error {
	endpoint := s.deps.Credentials.Resolve().ScriptURL
	rec, _ := s.Current()
	return s.deps.Forwarder.Forward(ctx, endpoint, rec)
}

// Report renders the texts for the current record.
func (s *Session) Report() (report.Texts, error) {
	rec, err := s.snapshot()
	if err != nil {
		return report.Texts{}, err
	}
	return report.Render(rec), nil
}
