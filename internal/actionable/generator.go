package actionable

import (
	"context"
	"fmt"
	"strings"

	"denuncias-go/internal/gemini"
	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"
)

// Steps are the phases every plan is asked to cover, in order.
var Steps = []string{"Inspección", "Ejecución", "Cierre"}

const planSystem = "Eres un jefe de operaciones municipales. Usa formato Markdown simple (sin negritas exageradas)."

// Generator is the slice of the Gemini client the planner needs.
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
}

// Planner asks the model for a short field plan for one complaint.
type Planner struct {
	gen Generator
	log *logger.Logger
}

func NewPlanner(gen Generator, log *logger.Logger) *Planner {
	return &Planner{gen: gen, log: log.Component("actionable")}
}

// BuildPrompt returns the plan request for c.
func BuildPrompt(c types.Complaint) string {
	return fmt.Sprintf("Genera un plan de acción de %d pasos (%s) para resolver este problema: %s en categoría %s.",
		len(Steps), strings.Join(Steps, ", "), c.Peticion, c.Categoria)
}

// Generate returns the plan as Markdown text. The record is not modified.
func (p *Planner) Generate(ctx context.Context, c types.Complaint) (string, error) {
	out, err := p.gen.Generate(ctx, gemini.Request{
		Prompt: BuildPrompt(c),
		System: planSystem,
	})
	if err != nil {
		p.log.WithError(err).WithField("id", c.ID).Warn("plan generation failed")
		return "", err
	}
	return strings.TrimSpace(out), nil
}
