// Package csvsource loads historical complaints from a CSV file with a header row.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kailas-cloud/civicdex/internal/domain"
	"github.com/kailas-cloud/civicdex/internal/domain/complaint"
)

// Header names recognised case-insensitively.
const (
	ColumnID          = "id"
	ColumnLocation    = "location"
	ColumnDescription = "description"
)

// checkEvery is how many rows are parsed between context checks.
const checkEvery = 1024

// Source reads complaints from a CSV file on every Load.
// It implements usecase/detector.Source.
type Source struct {
	path string
}

// New creates a CSV source for path.
func New(path string) *Source {
	return &Source{path: path}
}

// Path returns the configured file path.
func (s *Source) Path() string { return s.path }

// Load opens and parses the file. Rows keep file order.
func (s *Source) Load(ctx context.Context) ([]complaint.Complaint, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(s.path), err)
	}
	defer f.Close()

	cs, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(s.path), err)
	}
	return cs, nil
}

type columns struct {
	id          int
	location    int
	description int
	payload     map[int]string
}

// Parse reads complaints from r. The first record is the header; location and
// description columns are required, id is optional (1-based data row number
// otherwise) and every other named column becomes payload.
func Parse(ctx context.Context, r io.Reader) ([]complaint.Complaint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrEmptyCorpus)
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var out []complaint.Complaint
	for row := 1; ; row++ {
		if row%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if blank(rec) {
			continue
		}

		c, err := buildComplaint(rec, cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{id: -1, location: -1, description: -1, payload: make(map[int]string)}
	for i, name := range header {
		name = cleanCell(name)
		switch strings.ToLower(name) {
		case ColumnID:
			cols.id = i
		case ColumnLocation:
			cols.location = i
		case ColumnDescription:
			cols.description = i
		case "":
		default:
			cols.payload[i] = name
		}
	}
	if cols.location < 0 || cols.description < 0 {
		return columns{}, fmt.Errorf("%w: header must contain %q and %q columns",
			domain.ErrInvalidComplaint, ColumnLocation, ColumnDescription)
	}
	return cols, nil
}

func buildComplaint(rec []string, cols columns, row int) (complaint.Complaint, error) {
	id := cell(rec, cols.id)
	if id == "" {
		id = strconv.Itoa(row)
	}

	var payload map[string]string
	for i, name := range cols.payload {
		v := cell(rec, i)
		if v == "" {
			continue
		}
		if payload == nil {
			payload = make(map[string]string, len(cols.payload))
		}
		payload[name] = v
	}

	return complaint.FromRecord(id, rawCell(rec, cols.location), rawCell(rec, cols.description), payload)
}

func cell(rec []string, i int) string {
	return cleanCell(rawCell(rec, i))
}

// rawCell keeps the value verbatim; locations are matched by exact string.
func rawCell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
