package dataset

import (
	"path/filepath"
	"testing"
	"time"

	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBook_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "denuncias.xlsx")
	loc := time.FixedZone("CST", -6*3600)
	b := NewBook(path, "Denuncias", loc, logger.Discard())

	at := time.Date(2026, 1, 15, 18, 30, 5, 0, time.UTC)
	require.NoError(t, b.Append(types.Complaint{
		Fecha:     "2026-01-15",
		ID:        "TEST-001",
		Tecnico:   "Juan Pérez",
		Distrito:  "Centro",
		Categoria: "Recolección de voluminosos",
		Urgencia:  "Media",
	}, at))
	require.NoError(t, b.Append(types.Complaint{ID: "TEST-002", Status: "Cerrado"}, at))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Denuncias")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "TEST-001", rows[1][1])
	assert.Equal(t, "Media", rows[1][9])
	assert.Equal(t, types.StatusNew, rows[1][10])
	assert.Equal(t, "15/01/2026 12:30:05", rows[1][11])
	assert.Equal(t, "Cerrado", rows[2][10])
}

func TestBook_RowsRoundTrip(t *testing.T) {
	b := NewBook(filepath.Join(t.TempDir(), "d.xlsx"), "Hoja", nil, logger.Discard())

	got, err := b.Rows()
	require.NoError(t, err)
	assert.Empty(t, got, "missing file has no rows")

	require.NoError(t, b.Append(types.Complaint{ID: "CASE-2026-1", Categoria: "Baches", Distrito: "Soyapango", Urgencia: "Alta"}, time.Now()))
	got, err = b.Rows()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CASE-2026-1", got[0].ID)
	assert.Equal(t, "Baches", got[0].Categoria)
	assert.Equal(t, "Soyapango", got[0].Distrito)
	assert.Equal(t, "Alta", got[0].Urgencia)
	assert.Equal(t, types.StatusNew, got[0].Estado)
}

func TestBook_RowsOlderLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Denuncias"))
	require.NoError(t, f.SetSheetRow("Denuncias", "A1", &[]any{"Fecha", "ID", "Técnico", "Distrito", "Nombre", "Contacto", "Categoría", "Petición", "Dirección", "Estado", "Timestamp"}))
	require.NoError(t, f.SetSheetRow("Denuncias", "A2", &[]any{"2026-01-15", "OLD-1", "", "Centro", "", "", "Alumbrado", "", "", "Nuevo", "x"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := NewBook(path, "Denuncias", nil, logger.Discard()).Rows()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "OLD-1", got[0].ID)
	assert.Equal(t, "Alumbrado", got[0].Categoria)
	assert.Equal(t, "Nuevo", got[0].Estado)
	assert.Empty(t, got[0].Urgencia)
}

func TestBook_AppendAddsMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	b := NewBook(path, "Denuncias", nil, logger.Discard())
	require.NoError(t, b.Append(types.Complaint{ID: "CASE-2026-9"}, time.Now()))

	rows, err := b.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CASE-2026-9", rows[0].ID)
}
