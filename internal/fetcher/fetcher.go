// Package fetcher reads vendor source files: tabular rows from CSV and XLSX,
// and decoded text from plain-text documents.
package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-intake/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for a file type no reader handles.
	ErrUnsupportedFormat = eris.New("fetcher: unsupported file format")
	// ErrNoRows is returned when a tabular file has a header but no data.
	ErrNoRows = eris.New("fetcher: no data rows found")
)

// Kind classifies a source file by extension.
type Kind string

const (
	KindText    Kind = "text"
	KindTabular Kind = "tabular"
	KindImage   Kind = "image"
	KindUnknown Kind = ""
)

var kindByExt = map[string]Kind{
	".txt":  KindText,
	".text": KindText,
	".md":   KindText,
	".csv":  KindTabular,
	".tsv":  KindTabular,
	".xlsx": KindTabular,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".webp": KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
}

// KindOf returns the source kind for a file name.
func KindOf(name string) Kind {
	return kindByExt[strings.ToLower(filepath.Ext(name))]
}

// ReadRows parses a CSV, TSV or XLSX file into rows keyed by header. Rows
// whose cells are all blank are skipped.
func ReadRows(ctx context.Context, path string) ([]model.Row, error) {
	var (
		records [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv":
		records, err = readCSVFile(ctx, path, ext == ".tsv")
	case ".xlsx":
		records, err = ReadXLSX(path, XLSXOptions{})
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "read rows %s", filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	rows := recordsToRows(records)
	if len(rows) == 0 {
		return nil, eris.Wrapf(ErrNoRows, "read rows %s", filepath.Base(path))
	}
	return rows, nil
}

func readCSVFile(ctx context.Context, path string, tabs bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	opts := CSVOptions{LazyQuotes: true, TrimSpace: true}
	if tabs {
		opts.Delimiter = '\t'
	}

	return ReadCSV(ctx, f, opts)
}

// recordsToRows treats the first record as the header.
func recordsToRows(records [][]string) []model.Row {
	if len(records) < 2 {
		return nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		header[i] = h
	}

	var rows []model.Row
	for _, rec := range records[1:] {
		row := make(model.Row, len(header))
		blank := true
		for i, h := range header {
			if i >= len(rec) {
				break
			}
			v := strings.TrimSpace(rec[i])
			if v != "" {
				blank = false
			}
			if _, dup := row[h]; dup && v == "" {
				continue
			}
			row[h] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows
}
