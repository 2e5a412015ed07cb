// internal/types/models.go
package types

import "strings"

// StatusNew is the status every freshly enriched complaint starts with.
const StatusNew = "Nuevo"

// RequiredFields lists the keys the extraction reply must carry, in sheet order.
var RequiredFields = []string{
	"fecha",
	"tecnico",
	"distrito",
	"nombre",
	"contacto",
	"categoria",
	"peticion",
	"direccion",
	"urgencia",
}

// --------------------------------------------
// Structured complaint (extraction + enrichment)
// --------------------------------------------
type Complaint struct {
	Fecha     string `json:"fecha"`
	Tecnico   string `json:"tecnico"`
	Distrito  string `json:"distrito"`
	Nombre    string `json:"nombre"`
	Contacto  string `json:"contacto"`
	Categoria string `json:"categoria"`
	Peticion  string `json:"peticion"`
	Direccion string `json:"direccion"`
	Urgencia  string `json:"urgencia"`

	// set by enrichment
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// HasRecord reports whether the complaint went through enrichment.
func (c Complaint) HasRecord() bool {
	return c.ID != ""
}

// --------------------------------------------
// Operator edits (nil = leave as is)
// --------------------------------------------
type Patch struct {
	Fecha     *string `json:"fecha,omitempty"`
	Tecnico   *string `json:"tecnico,omitempty"`
	Distrito  *string `json:"distrito,omitempty"`
	Nombre    *string `json:"nombre,omitempty"`
	Contacto  *string `json:"contacto,omitempty"`
	Categoria *string `json:"categoria,omitempty"`
	Peticion  *string `json:"peticion,omitempty"`
	Direccion *string `json:"direccion,omitempty"`
	Urgencia  *string `json:"urgencia,omitempty"`
}

// Apply returns a copy of c with the non-nil patch fields set, trimmed.
// ID and Status are never touched.
func (p Patch) Apply(c Complaint) Complaint {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&c.Fecha, p.Fecha)
	set(&c.Tecnico, p.Tecnico)
	set(&c.Distrito, p.Distrito)
	set(&c.Nombre, p.Nombre)
	set(&c.Contacto, p.Contacto)
	set(&c.Categoria, p.Categoria)
	set(&c.Peticion, p.Peticion)
	set(&c.Direccion, p.Direccion)
	set(&c.Urgencia, p.Urgencia)
	return c
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Fecha == nil && p.Tecnico == nil && p.Distrito == nil &&
		p.Nombre == nil && p.Contacto == nil && p.Categoria == nil &&
		p.Peticion == nil && p.Direccion == nil && p.Urgencia == nil
}
