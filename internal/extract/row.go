package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/vendor-intake/internal/model"
)

// TabularConfidence is the fixed confidence of candidates built from rows.
const TabularConfidence = 1.0

// notesColumn is the recognized free-text column.
const notesColumn = "notes"

// columnAliases maps lowercase header names onto candidate fields.
var columnAliases = map[string]model.Field{
	"name":          model.FieldName,
	"company":       model.FieldName,
	"company name":  model.FieldName,
	"vendor":        model.FieldName,
	"vendor name":   model.FieldName,
	"address":       model.FieldAddress,
	"phone":         model.FieldPhone,
	"phone number":  model.FieldPhone,
	"telephone":     model.FieldPhone,
	"tel":           model.FieldPhone,
	"email":         model.FieldEmail,
	"e-mail":        model.FieldEmail,
	"email address": model.FieldEmail,
	"website":       model.FieldWebsite,
	"web":           model.FieldWebsite,
	"url":           model.FieldWebsite,
}

// FromRow maps one tabular row directly onto a candidate. index is the
// 0-based data row position. Unrecognized non-empty columns are kept in
// Notes as "Column: value" lines.
func (e *Extractor) FromRow(index int, row model.Row) model.VendorCandidate {
	c := model.VendorCandidate{
		Confidence: TabularConfidence,
		Source:     model.SourceRef{Row: index + 1},
	}

	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	var notes, extras []string
	for _, h := range headers {
		val := strings.TrimSpace(row[h])
		if val == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h))

		if key == notesColumn {
			notes = append(notes, val)
			continue
		}

		field, ok := columnAliases[key]
		if !ok || c.Value(field) != "" {
			extras = append(extras, fmt.Sprintf("%s: %s", strings.TrimSpace(h), val))
			continue
		}
		setField(&c, field, val)
	}

	c.Notes = strings.Join(append(notes, extras...), "\n")
	c.FieldHits = hitsOf(c)
	c.LogoURL = e.logos.Lookup(c.Name)
	return c
}

func setField(c *model.VendorCandidate, f model.Field, val string) {
	switch f {
	case model.FieldName:
		c.Name = val
	case model.FieldAddress:
		c.Address = val
	case model.FieldPhone:
		c.Phone = val
	case model.FieldEmail:
		c.Email = strings.ToLower(val)
	case model.FieldWebsite:
		c.Website = val
	}
}
