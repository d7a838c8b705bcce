package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abelbrown/screener/internal/logging"
	"github.com/abelbrown/screener/internal/stock"
)

// ParseCSV reads a snapshot whose header row names the columns: "Stock Name"
// plus any of the numeric field names, in any order. Unrecognised columns are
// ignored. Empty cells become unknown values. Rows without a name or with an
// unparseable number are skipped and logged.
func ParseCSV(r io.Reader) ([]stock.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	nameCol := -1
	fieldCols := make(map[int]stock.Field)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if strings.EqualFold(h, stock.NameKey) {
			nameCol = i
			continue
		}
		if f, ok := stock.FieldByName(h); ok {
			fieldCols[i] = f
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("csv: no %q column", stock.NameKey)
	}

	records := []stock.Record{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		rec, err := parseRow(row, nameCol, fieldCols)
		if err != nil {
			logging.Warn("skipping csv row", "line", line, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string, nameCol int, fieldCols map[int]stock.Field) (stock.Record, error) {
	var rec stock.Record
	if nameCol < len(row) {
		rec.Name = strings.TrimSpace(row[nameCol])
	}
	if rec.Name == "" {
		return rec, errors.New("missing stock name")
	}

	for i, f := range fieldCols {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", f.Name(), err)
		}
		rec.Set(f, v)
	}
	return rec, nil
}

// ImportCSV replaces the snapshot with the records parsed from r and
// returns how many were stored.
func (s *Store) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	records, err := ParseCSV(r)
	if err != nil {
		return 0, err
	}
	if err := s.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ImportFile is ImportCSV for a file on disk.
func (s *Store) ImportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	n, err := s.ImportCSV(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	return n, nil
}
