// Package report renders the texts shown to operators and citizens.
package report

import (
	"fmt"
	"strings"

	"denuncias-go/internal/types"
)

// Urgency levels as rendered next to a record.
const (
	LevelHigh   = "alta"
	LevelMedium = "media"
	LevelLow    = "baja"
)

// Texts bundles the two renderings of a record.
type Texts struct {
	Internal string `json:"reporte_interno"`
	Citizen  string `json:"respuesta_ciudadano"`
	Level    string `json:"nivel"`
}

// Render builds all texts for c.
func Render(c types.Complaint) Texts {
	return Texts{
		Internal: Internal(c),
		Citizen:  CitizenResponse(c),
		Level:    Level(c.Urgencia),
	}
}

// Level maps a free-form urgency to alta, media or baja by substring.
// Anything unrecognised is baja.
func Level(urgencia string) string {
	u := strings.ToLower(urgencia)
	switch {
	case strings.Contains(u, LevelHigh):
		return LevelHigh
	case strings.Contains(u, LevelMedium):
		return LevelMedium
	default:
		return LevelLow
	}
}

// Internal is the report block handed to the responsible department.
func Internal(c types.Complaint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[REPORTE MUNICIPAL # %s]\n", c.ID)
	b.WriteString("--------------------------------\n")
	fmt.Fprintf(&b, "PRIORIDAD: %s\n", strings.ToUpper(c.Urgencia))
	fmt.Fprintf(&b, "CATEGORÍA: %s\n", c.Categoria)
	fmt.Fprintf(&b, "FECHA: %s\n\n", c.Fecha)
	fmt.Fprintf(&b, "CIUDADANO: %s\n", c.Nombre)
	fmt.Fprintf(&b, "CONTACTO: %s\n", c.Contacto)
	fmt.Fprintf(&b, "UBICACIÓN: %s\n\n", c.Direccion)
	b.WriteString("DETALLE DEL PROBLEMA:\n")
	b.WriteString(c.Peticion + "\n")
	b.WriteString("--------------------------------")
	return b.String()
}

// CitizenResponse is the acknowledgement sent back to the complainant.
func CitizenResponse(c types.Complaint) string {
	nombre := c.Nombre
	if strings.TrimSpace(nombre) == "" {
		nombre = "Vecino"
	}
	return fmt.Sprintf(`Estimado(a) %s,

Hemos recibido su reporte con ID: %s.
Nuestro equipo de %s ha sido notificado. Debido a la clasificación de urgencia %s, estaremos atendiendo su solicitud a la brevedad posible.

Gracias por contribuir a mejorar San Salvador Este.
Atte. Gestión Municipal`, nombre, c.ID, c.Categoria, c.Urgencia)
}
