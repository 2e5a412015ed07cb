package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"denuncias-go/internal/logger"
	"denuncias-go/internal/types"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// Header is the first row of the sheet, in column order.
var Header = []string{
	"Fecha",
	"ID",
	"Técnico",
	"Distrito",
	"Nombre",
	"Contacto",
	"Categoría",
	"Petición",
	"Dirección",
	"Urgencia",
	"Estado",
	"Timestamp",
}

// TimestampLayout is how the append time is written (dd/mm/yyyy hh:mm:ss).
const TimestampLayout = "02/01/2006 15:04:05"

// Row is one complaint as stored in the sheet.
type Row struct {
	Fecha     string `json:"fecha"`
	ID        string `json:"id"`
	Tecnico   string `json:"tecnico"`
	Distrito  string `json:"distrito"`
	Nombre    string `json:"nombre"`
	Contacto  string `json:"contacto"`
	Categoria string `json:"categoria"`
	Peticion  string `json:"peticion"`
	Direccion string `json:"direccion"`
	Urgencia  string `json:"urgencia"`
	Estado    string `json:"estado"`
	Timestamp string `json:"timestamp"`
}

// Book is an .xlsx workbook holding one complaint per row.
//
// The file and sheet are created on first Append. Access is serialised
// within the process; other writers of the same file are not coordinated.
type Book struct {
	mu    sync.Mutex
	path  string
	sheet string
	loc   *time.Location
	log   *logger.Logger
}

func NewBook(path, sheet string, loc *time.Location, log *logger.Logger) *Book {
	if loc == nil {
		loc = time.UTC
	}
	return &Book{
		path:  path,
		sheet: sheet,
		loc:   loc,
		log:   &logger.Logger{Entry: log.Component("dataset").WithField("path", path)},
	}
}

// Path returns the workbook location.
func (b *Book) Path() string { return b.path }

// Rows reads every data row back, matching columns by header name so sheets
// written with an older column layout still load. A missing file has no rows.
func (b *Book) Rows() ([]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := excelize.OpenFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open workbook %s", b.path)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(b.sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(b.sheet)
	if err != nil {
		return nil, eris.Wrapf(err, "read sheet %s", b.sheet)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	col := headerIndex(rows[0])
	cell := func(r []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(r) {
			return ""
		}
		return r[i]
	}

	out := make([]Row, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if len(r) == 0 {
			continue
		}
		out = append(out, Row{
			Fecha:     cell(r, "Fecha"),
			ID:        cell(r, "ID"),
			Tecnico:   cell(r, "Técnico"),
			Distrito:  cell(r, "Distrito"),
			Nombre:    cell(r, "Nombre"),
			Contacto:  cell(r, "Contacto"),
			Categoria: cell(r, "Categoría"),
			Peticion:  cell(r, "Petición"),
			Direccion: cell(r, "Dirección"),
			Urgencia:  cell(r, "Urgencia"),
			Estado:    cell(r, "Estado"),
			Timestamp: cell(r, "Timestamp"),
		})
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		k := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[k]; !dup {
			idx[k] = i
		}
	}
	return idx
}

// Append writes c as a new row stamped with at. The header row is written
// first when the sheet is empty.
func (b *Book) Append(c types.Complaint, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(b.sheet)
	if err != nil {
		return eris.Wrapf(err, "read sheet %s", b.sheet)
	}
	next := len(rows) + 1
	if len(rows) == 0 {
		if err := setRow(f, b.sheet, 1, toCells(Header)); err != nil {
			return err
		}
		next = 2
		b.log.Info("header row written")
	}

	status := c.Status
	if status == "" {
		status = types.StatusNew
	}
	row := []any{
		c.Fecha, c.ID, c.Tecnico, c.Distrito, c.Nombre, c.Contacto,
		c.Categoria, c.Peticion, c.Direccion, c.Urgencia, status,
		at.In(b.loc).Format(TimestampLayout),
	}
	if err := setRow(f, b.sheet, next, row); err != nil {
		return err
	}
	if err := f.SaveAs(b.path); err != nil {
		return eris.Wrapf(err, "save workbook %s", b.path)
	}
	b.log.WithField("id", c.ID).WithField("row", next).Info("row appended")
	return nil
}

// open loads the workbook or creates it with the target sheet.
func (b *Book) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(b.path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		f = excelize.NewFile()
		defaultSheet := f.GetSheetName(0)
		if defaultSheet != b.sheet {
			if err := f.SetSheetName(defaultSheet, b.sheet); err != nil {
				_ = f.Close()
				return nil, eris.Wrap(err, "name sheet")
			}
		}
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
			_ = f.Close()
			return nil, eris.Wrapf(err, "create dir for %s", b.path)
		}
		return f, nil
	default:
		return nil, eris.Wrapf(err, "open workbook %s", b.path)
	}

	idx, err := f.GetSheetIndex(b.sheet)
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrapf(err, "look up sheet %s", b.sheet)
	}
	if idx < 0 {
		if _, err := f.NewSheet(b.sheet); err != nil {
			_ = f.Close()
			return nil, eris.Wrapf(err, "create sheet %s", b.sheet)
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return eris.Wrap(err, "cell name")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return eris.Wrapf(err, "write row %d", row)
	}
	return nil
}

func toCells(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
