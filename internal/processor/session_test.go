package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"denuncias-go/internal/actionable"
	"denuncias-go/internal/config"
	apperrors "denuncias-go/internal/errors"
	"denuncias-go/internal/extractor"
	"denuncias-go/internal/forwarder"
	"denuncias-go/internal/gemini"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var caseID = regexp.MustCompile(`^CASE-\d{4}-\d{1,4}$`)

const alumbradoReply = `{"fecha":"2026-10-16","tecnico":"N/A","distrito":"Ilopango","nombre":"María López","contacto":"7777-1234","categoria":"Alumbrado","peticion":"Poste de luz apagado frente a la escuela","direccion":"Calle El Sol #12","urgencia":"Alta"}`

// fakeGemini answers by system instruction, the way each operation is keyed.
type fakeGemini struct {
	failRewrite   atomic.Bool
	failTranslate atomic.Bool
	calls         int32
}

func (f *fakeGemini) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			SystemInstruction struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"systemInstruction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.SystemInstruction.Parts) == 0 {
			t.Errorf("bad gemini request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		system := body.SystemInstruction.Parts[0].Text

		var text string
		switch {
		case strings.Contains(system, "analista"):
			text = alumbradoReply
		case strings.Contains(system, "redactor"):
			if f.failRewrite.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			text = "Luminaria fuera de servicio frente a centro escolar. Requiere revisión eléctrica."
		case strings.Contains(system, "traductor"):
			if f.failTranslate.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			text = "Dear María López, we received your report."
		case strings.Contains(system, "jefe de operaciones"):
			text = "1. Inspección\n2. Ejecución\n3. Cierre"
		default:
			t.Errorf("unexpected system instruction %q", system)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		reply, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
			}},
		})
		_, _ = w.Write(reply)
	}
}

type harness struct {
	session  *Session
	resolver *config.Resolver
	gemini   *fakeGemini
	hookHits *int32
	hookBody *types.Complaint
	hookURL  string
}

func newHarness(t *testing.T, static config.Values) *harness {
	t.Helper()
	log := logger.Discard()

	fg := &fakeGemini{}
	gsrv := httptest.NewServer(fg.handler(t))
	t.Cleanup(gsrv.Close)

	var hits int32
	var got types.Complaint
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusFound)
	}))
	t.Cleanup(hook.Close)

	resolver := config.NewResolverWithStatic(static, config.NewStore(filepath.Join(t.TempDir(), "settings.env")), log)
	client := gemini.NewClient(gemini.Options{BaseURL: gsrv.URL, Model: "m"},
		func() string { return resolver.Resolve().APIKey }, log)

	s := NewSession(Deps{
		Extractor:   extractor.New(client, log),
		Generator:   client,
		Planner:     actionable.NewPlanner(client, log),
		Forwarder:   forwarder.New(0, log),
		Credentials: resolver,
	}, log)

	return &harness{session: s, resolver: resolver, gemini: fg, hookHits: &hits, hookBody: &got, hookURL: hook.URL}
}

func TestEnrich(t *testing.T) {
	e := Enricher{
		Now:  func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
		IntN: func(int) int { return 7 },
	}
	c := e.Enrich(types.Complaint{Categoria: "Baches", Status: "Cerrado"})
	assert.Equal(t, "CASE-2026-7", c.ID)
	assert.Equal(t, types.StatusNew, c.Status)
	assert.Equal(t, "Baches", c.Categoria)
}

func TestEnrich_NotIdempotent(t *testing.T) {
	n := 0
	e := Enricher{Now: time.Now, IntN: func(int) int { n++; return n }}
	in := types.Complaint{Categoria: "Baches"}

	a, b := e.Enrich(in), e.Enrich(in)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Regexp(t, caseID, a.ID)
	assert.Regexp(t, caseID, b.ID)
}

func TestEnrich_DefaultSourceShape(t *testing.T) {
	e := NewEnricher()
	for i := 0; i < 50; i++ {
		assert.Regexp(t, caseID, e.Enrich(types.Complaint{}).ID)
	}
}

func TestSession_AlumbradoEndToEnd(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: config.PlaceholderAPIKey})
	ctx := context.Background()

	require.NoError(t, h.resolver.Save("LOCAL-KEY", h.hookURL))

	rec, err := h.session.Analyze(ctx, "  El poste frente a la escuela lleva días apagado. María López 7777-1234  ")
	require.NoError(t, err)
	assert.Equal(t, "Alumbrado", rec.Categoria)
	assert.Equal(t, "Alta", rec.Urgencia)
	assert.Equal(t, types.StatusNew, rec.Status)
	assert.Regexp(t, caseID, rec.ID)

	cur, ok := h.session.Current()
	require.True(t, ok)
	assert.Equal(t, rec, cur)

	require.NoError(t, h.session.Forward(ctx))
	assert.Equal(t, int32(1), atomic.LoadInt32(h.hookHits))
	assert.Equal(t, rec, *h.hookBody)
}

func TestSession_AnalyzeEmptyInput(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	_, err := h.session.Analyze(context.Background(), "   \n ")
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
	assert.Zero(t, atomic.LoadInt32(&h.gemini.calls))
}

func TestSession_AnalyzeWithoutKey(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: config.PlaceholderAPIKey})
	_, err := h.session.Analyze(context.Background(), "bache")
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigMissing(err))
	assert.Zero(t, atomic.LoadInt32(&h.gemini.calls))
	_, ok := h.session.Current()
	assert.False(t, ok)
}

func TestSession_NoRecordOperations(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC", ScriptURL: "http://unused.invalid"})
	ctx := context.Background()

	_, err := h.session.Edit(types.Patch{})
	assert.True(t, apperrors.IsNoData(err))
	_, err = h.session.Rewrite(ctx)
	assert.True(t, apperrors.IsNoData(err))
	_, err = h.session.Plan(ctx)
	assert.True(t, apperrors.IsNoData(err))
	_, err = h.session.Translate(ctx, "", "en")
	assert.True(t, apperrors.IsNoData(err))
	_, err = h.session.Report()
	assert.True(t, apperrors.IsNoData(err))
	err = h.session.Forward(ctx)
	assert.True(t, apperrors.IsNoData(err))

	assert.Zero(t, atomic.LoadInt32(&h.gemini.calls))
}

func TestSession_ForwardWithoutURL(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	ctx := context.Background()

	_, err := h.session.Analyze(ctx, "poste apagado")
	require.NoError(t, err)

	err = h.session.Forward(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigMissing(err))
	assert.Zero(t, atomic.LoadInt32(h.hookHits))
}

func TestSession_RewriteReplacesDescription(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	ctx := context.Background()
	rec, err := h.session.Analyze(ctx, "poste apagado")
	require.NoError(t, err)

	got, err := h.session.Rewrite(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Luminaria fuera de servicio frente a centro escolar. Requiere revisión eléctrica.", got.Peticion)
	assert.Equal(t, rec.ID, got.ID)

	cur, _ := h.session.Current()
	assert.Equal(t, got.Peticion, cur.Peticion)
}

func TestSession_FailedRewriteKeepsRecord(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	ctx := context.Background()
	rec, err := h.session.Analyze(ctx, "poste apagado")
	require.NoError(t, err)

	h.gemini.failRewrite.Store(true)
	_, err = h.session.Rewrite(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))

	cur, _ := h.session.Current()
	assert.Equal(t, rec, cur)
}

func TestSession_TranslateNeverMutates(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	ctx := context.Background()
	rec, err := h.session.Analyze(ctx, "poste apagado")
	require.NoError(t, err)

	out, err := h.session.Translate(ctx, "", "en")
	require.NoError(t, err)
	assert.Equal(t, "Dear María López, we received your report.", out)
	cur, _ := h.session.Current()
	assert.Equal(t, rec, cur)

	h.gemini.failTranslate.Store(true)
	_, err = h.session.Translate(ctx, "hola", "fr")
	assert.True(t, apperrors.IsUpstream(err))
	cur, _ = h.session.Current()
	assert.Equal(t, rec, cur)
}

func TestSession_PlanAndReport(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	ctx := context.Background()
	rec, err := h.session.Analyze(ctx, "poste apagado")
	require.NoError(t, err)

	plan, err := h.session.Plan(ctx)
	require.NoError(t, err)
	assert.Contains(t, plan, "Inspección")

	texts, err := h.session.Report()
	require.NoError(t, err)
	assert.Contains(t, texts.Internal, rec.ID)
	assert.Equal(t, "alta", texts.Level)

	cur, _ := h.session.Current()
	assert.Equal(t, rec, cur)
}

func TestSession_Edit(t *testing.T) {
	h := newHarness(t, config.Values{APIKey: "STATIC"})
	rec, err := h.session.Analyze(context.Background(), "poste apagado")
	require.NoError(t, err)

	tec := "  Ing. Ramírez "
	got, err := h.session.Edit(types.Patch{Tecnico: &tec})
	require.NoError(t, err)
	assert.Equal(t, "Ing. Ramírez", got.Tecnico)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Status, got.Status)
}

// blockingGen holds a rewrite until released so the record can be replaced.
type blockingGen struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingGen) Generate(ctx context.Context, req gemini.Request) (string, error) {
	close(b.started)
	<-b.release
	return "texto técnico", nil
}

type seqExtractor struct{ n int32 }

func (s *seqExtractor) Extract(context.Context, string) (types.Complaint, error) {
	n := atomic.AddInt32(&s.n, 1)
	return types.Complaint{Peticion: fmt.Sprintf("queja %d", n)}, nil
}

func TestSession_RewriteDroppedWhenRecordReplaced(t *testing.T) {
	gen := &blockingGen{started: make(chan struct{}), release: make(chan struct{})}
	n := 0
	s := NewSession(Deps{
		Extractor: &seqExtractor{},
		Generator: gen,
		Enricher:  Enricher{Now: time.Now, IntN: func(int) int { n++; return n }},
	}, logger.Discard())
	ctx := context.Background()

	_, err := s.Analyze(ctx, "primera")
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Rewrite(ctx)
		errc <- err
	}()
	<-gen.started

	second, err := s.Analyze(ctx, "segunda")
	require.NoError(t, err)
	close(gen.release)

	assert.ErrorIs(t, <-errc, apperrors.ErrStaleRecord)
	cur, _ := s.Current()
	assert.Equal(t, second, cur)
	assert.Equal(t, "queja 2", cur.Peticion)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Inglés", LanguageName("en"))
	assert.Equal(t, "Francés", LanguageName("FR"))
	assert.Equal(t, "Portugués", LanguageName("pt"))
	assert.Equal(t, "Alemán", LanguageName("de"))
	assert.Equal(t, "Inglés", LanguageName(""))
	assert.Equal(t, "Italiano", LanguageName("Italiano"))
}
