package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/vendor-intake/internal/model"
)

func TestFromRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		row       model.Row
		want      model.VendorCandidate
		wantHits  []model.Field
		wantNotes string
	}{
		{
			name: "recognized columns",
			row: model.Row{
				"name":    "Ace Hardware",
				"address": "123 Main St",
				"phone":   "555-111-2222",
				"email":   "ACE@Hardware.com",
				"notes":   "net 30",
			},
			want: model.VendorCandidate{
				Name:    "Ace Hardware",
				Address: "123 Main St",
				Phone:   "555-111-2222",
				Email:   "ace@hardware.com",
			},
			wantHits:  []model.Field{model.FieldName, model.FieldAddress, model.FieldPhone, model.FieldEmail},
			wantNotes: "net 30",
		},
		{
			name: "aliases and case-insensitive headers",
			row: model.Row{
				" Vendor Name ": "Budget Supplies",
				"Telephone":     "555-333-4444",
				"Website":       "www.budget.example",
			},
			want: model.VendorCandidate{
				Name:    "Budget Supplies",
				Phone:   "555-333-4444",
				Website: "www.budget.example",
			},
			wantHits: []model.Field{model.FieldName, model.FieldPhone, model.FieldWebsite},
		},
		{
			name: "unknown columns preserved in notes sorted by header",
			row: model.Row{
				"Name":       "City Electric",
				"Notes":      "preferred",
				"Terms":      "net 45",
				"Account No": "A-100",
				"Empty":      "  ",
			},
			want:      model.VendorCandidate{Name: "City Electric"},
			wantHits:  []model.Field{model.FieldName},
			wantNotes: "preferred\nAccount No: A-100\nTerms: net 45",
		},
		{
			name: "duplicate field keeps first header and notes the rest",
			row: model.Row{
				"Company": "Acme Widgets",
				"Name":    "Acme Widgets LLC",
			},
			want:      model.VendorCandidate{Name: "Acme Widgets"},
			wantHits:  []model.Field{model.FieldName},
			wantNotes: "Name: Acme Widgets LLC",
		},
		{
			name:     "empty row",
			row:      model.Row{},
			wantHits: []model.Field{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := New().FromRow(2, tt.row)

			assert.Equal(t, tt.want.Name, c.Name)
			assert.Equal(t, tt.want.Address, c.Address)
			assert.Equal(t, tt.want.Phone, c.Phone)
			assert.Equal(t, tt.want.Email, c.Email)
			assert.Equal(t, tt.want.Website, c.Website)
			assert.Equal(t, tt.wantNotes, c.Notes)
			assert.Equal(t, tt.wantHits, c.FieldHits.Fields())
			assert.InDelta(t, 1.0, c.Confidence, 0.0001)
			assert.Equal(t, 3, c.Source.Row)
		})
	}
}
