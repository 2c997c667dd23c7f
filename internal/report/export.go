package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/balkashynov/whm/internal/models"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported export formats
var Formats = []Format{FormatCSV, FormatJSON, FormatPDF}

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q. Use: csv, json, or pdf", s)
}

// FileName is the file written into the export folder
func (f Format) FileName() string {
	switch f {
	case FormatPDF:
		return "whm_report.pdf"
	case FormatJSON:
		return "whm_data.json"
	default:
		return "whm_data.csv"
	}
}

// CSVColumns are the raw column names of the session table, in table order
var CSVColumns = []string{"id", "description", "group", "hour", "date", "date2", "total_hours", "subtotal"}

// WriteFile exports sessions into dir, creating it if needed, and returns the file path
func WriteFile(dir string, format Format, sessions []models.Session) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("output folder is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output folder: %w", err)
	}

	path := filepath.Join(dir, format.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	switch format {
	case FormatJSON:
		err = WriteJSON(f, sessions)
	case FormatPDF:
		err = WritePDF(f, sessions)
	default:
		err = WriteCSV(f, sessions)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteCSV writes every session with a header row of raw column names
func WriteCSV(w io.Writer, sessions []models.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}
	for _, s := range sessions {
		record := []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.Description,
			s.Group,
			formatFloat(s.Rate),
			s.StartTime.String(),
			s.EndTime.String(),
			formatFloat(s.ElapsedHours),
			formatFloat(s.Subtotal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file produced by WriteCSV. Columns are matched by header name,
// so reordered files are accepted; description and date are required.
func ReadCSV(r io.Reader) ([]models.Session, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"description", "date"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing %q column", required)
		}
	}

	var sessions []models.Session
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		s, err := parseRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func parseRecord(record []string, idx map[string]int) (models.Session, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var s models.Session
	if v := get("id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return s, fmt.Errorf("invalid id %q", v)
		}
		s.ID = uint(id)
	}

	s.Description = get("description")
	if s.Description == "" {
		return s, fmt.Errorf("description is empty")
	}
	s.Group = get("group")

	start, err := models.ParseTimestamp(get("date"))
	if err != nil {
		return s, fmt.Errorf("invalid date %q", get("date"))
	}
	s.StartTime = models.NewTimestamp(start)

	if v := get("date2"); v != "" {
		end, err := models.ParseTimestamp(v)
		if err != nil {
			return s, fmt.Errorf("invalid date2 %q", v)
		}
		s.EndTime = models.NewNullTimestamp(end)
	}

	for col, dst := range map[string]*float64{
		"hour":        &s.Rate,
		"total_hours": &s.ElapsedHours,
		"subtotal":    &s.Subtotal,
	} {
		v := get(col)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("invalid %s %q", col, v)
		}
		*dst = f
	}

	return s, nil
}

// WriteJSON writes sessions as an indented JSON array
func WriteJSON(w io.Writer, sessions []models.Session) error {
	if sessions == nil {
		sessions = []models.Session{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessions)
}

// formatFloat keeps full precision so an export re-imports unchanged
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
