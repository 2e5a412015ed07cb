package extractor

import (
	"fmt"
	"strings"
	"time"

	"denuncias-go/internal/types"
)

// Categories are offered to the model as guidance. Replies outside the list
// are accepted.
var Categories = []string{
	"Recolección de voluminosos",
	"Alumbrado",
	"Baches",
	"Zonas Verdes",
	"Información CAM",
	"URBANO",
}

// UnknownDistrict is what the model is told to write when it cannot infer one.
const UnknownDistrict = "sin dato"

// BuildSystemPrompt returns the extraction instruction for the given day.
func BuildSystemPrompt(today time.Time) string {
	return fmt.Sprintf(`Eres un experto analista de denuncias municipales.
Extrae la información del texto entregado.
- Fecha: usar la fecha actual (%s) en formato YYYY-MM-DD si no se menciona.
- Técnico: nombre del técnico asignado si se menciona.
- Distrito: inferir o poner "%s".
- Categorías posibles: %s.
- Urgencia: Alta, Media o Baja.
Responde solo con el objeto JSON.`,
		today.Format("2006-01-02"), UnknownDistrict, strings.Join(Categories, ", "))
}

// responseSchema is sent as generationConfig.responseSchema (OpenAPI subset).
func responseSchema() map[string]any {
	props := make(map[string]any, len(types.RequiredFields))
	for _, f := range types.RequiredFields {
		props[f] = map[string]any{"type": "STRING"}
	}
	return map[string]any{
		"type":       "OBJECT",
		"properties": props,
		"required":   types.RequiredFields,
	}
}

// validationSchema checks the reply locally (JSON Schema draft-07).
var validationSchema = func() string {
	props := make([]string, 0, len(types.RequiredFields))
	required := make([]string, 0, len(types.RequiredFields))
	for _, f := range types.RequiredFields {
		props = append(props, fmt.Sprintf(`%q: {"type": "string"}`, f))
		required = append(required, fmt.Sprintf("%q", f))
	}
	return fmt.Sprintf(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {%s},
  "required": [%s]
}`, strings.Join(props, ", "), strings.Join(required, ", "))
}()
