package fetcher

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions controls how delimited files are parsed.
type CSVOptions struct {
	Delimiter  rune // ',' when zero
	Comment    rune
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV returns every record in r, header first. Records may have
// differing field counts. ctx is checked between records.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.Comment = opts.Comment
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "csv: cancelled")
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		if opts.TrimSpace {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
		records = append(records, rec)
	}
}
