package fetcher

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/vendor-intake/internal/model"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"vendors.txt", KindText},
		{"NOTES.MD", KindText},
		{"list.csv", KindTabular},
		{"list.tsv", KindTabular},
		{"book.xlsx", KindTabular},
		{"card.JPG", KindImage},
		{"scan.tiff", KindImage},
		{"report.pdf", KindUnknown},
		{"noext", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.name))
		})
	}
}

func TestReadRows_CSV(t *testing.T) {
	path := writeFixture(t, "vendors.csv", "\ufeffName,Phone,,Email\nAcme Inc, 555-123-4567 ,x,info@acme.com\n,,,\nBeta LLC,,,\n")

	rows, err := ReadRows(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.Row{"Name": "Acme Inc", "Phone": "555-123-4567", "column_3": "x", "Email": "info@acme.com"}, rows[0])
	assert.Equal(t, "Beta LLC", rows[1]["Name"])
}

func TestReadRows_TSV(t *testing.T) {
	path := writeFixture(t, "vendors.tsv", "name\tphone\nAcme, Inc\t555-123-4567\n")

	rows, err := ReadRows(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme, Inc", rows[0]["name"])
}

func TestReadRows_XLSX(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Company", "Website"},
			{"Acme Inc", "www.acme.com"},
			{"Beta LLC"},
		},
	})

	rows, err := ReadRows(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "www.acme.com", rows[0]["Website"])
	assert.Equal(t, "Beta LLC", rows[1]["Company"])
}

func TestReadRows_HeaderOnly(t *testing.T) {
	path := writeFixture(t, "empty.csv", "name,phone\n")

	_, err := ReadRows(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestReadRows_Unsupported(t *testing.T) {
	_, err := ReadRows(context.Background(), "vendors.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRows_MissingFile(t *testing.T) {
	_, err := ReadRows(context.Background(), filepath.Join(t.TempDir(), "gone.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: open")
}
