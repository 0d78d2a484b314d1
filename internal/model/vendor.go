package model

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// Field names one structured attribute of a vendor record.
type Field string

const (
	FieldName    Field = "name"
	FieldAddress Field = "address"
	FieldPhone   Field = "phone"
	FieldEmail   Field = "email"
	FieldWebsite Field = "website"
)

// AllFields returns every structured field in canonical order.
func AllFields() []Field {
	return []Field{FieldName, FieldAddress, FieldPhone, FieldEmail, FieldWebsite}
}

// CanonicalFields returns the fields that count toward confidence.
func CanonicalFields() []Field {
	return []Field{FieldName, FieldPhone, FieldEmail, FieldAddress}
}

func (f Field) bit() FieldSet {
	switch f {
	case FieldName:
		return 1 << 0
	case FieldAddress:
		return 1 << 1
	case FieldPhone:
		return 1 << 2
	case FieldEmail:
		return 1 << 3
	case FieldWebsite:
		return 1 << 4
	default:
		return 0
	}
}

// FieldSet records which fields received a non-empty value.
type FieldSet uint8

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...Field) FieldSet {
	var s FieldSet
	for _, f := range fields {
		s = s.With(f)
	}
	return s
}

// With returns a copy of the set including f.
func (s FieldSet) With(f Field) FieldSet {
	return s | f.bit()
}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	b := f.bit()
	return b != 0 && s&b == b
}

// Fields lists the members in canonical order.
func (s FieldSet) Fields() []Field {
	out := make([]Field, 0, 5)
	for _, f := range AllFields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of fields in the set.
func (s FieldSet) Len() int {
	return len(s.Fields())
}

// MarshalJSON encodes the set as a list of field names.
func (s FieldSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}

// UnmarshalJSON decodes a list of field names. Unknown names are ignored.
func (s *FieldSet) UnmarshalJSON(data []byte) error {
	var names []Field
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewFieldSet(names...)
	return nil
}

// MarshalYAML encodes the set as a list of field names.
func (s FieldSet) MarshalYAML() (any, error) {
	return s.Fields(), nil
}

// UnmarshalYAML decodes a sequence of field names. Unknown names are ignored.
func (s *FieldSet) UnmarshalYAML(value *yaml.Node) error {
	var names []Field
	if err := value.Decode(&names); err != nil {
		return err
	}
	*s = NewFieldSet(names...)
	return nil
}

// SourceRef points back at the block or row a candidate came from.
type SourceRef struct {
	Block     int `json:"block,omitempty" yaml:"block,omitempty"`
	StartLine int `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	Row       int `json:"row,omitempty" yaml:"row,omitempty"`
}

// VendorCandidate is an extracted, not-yet-reviewed vendor record. An empty
// string means the field is absent.
type VendorCandidate struct {
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	Address    string    `json:"address,omitempty" yaml:"address,omitempty"`
	Phone      string    `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email      string    `json:"email,omitempty" yaml:"email,omitempty"`
	Website    string    `json:"website,omitempty" yaml:"website,omitempty"`
	Notes      string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	LogoURL    string    `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`
	FieldHits  FieldSet  `json:"field_hits" yaml:"field_hits"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	Source     SourceRef `json:"source" yaml:"source"`
}

// Value returns the candidate's value for a structured field.
func (c VendorCandidate) Value(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldAddress:
		return c.Address
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	case FieldWebsite:
		return c.Website
	default:
		return ""
	}
}

// Row is one tabular record keyed by column header.
type Row map[string]string

// Vendor is an accepted candidate as persisted by the store.
type Vendor struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	Name       string    `json:"name" validate:"required,max=200"`
	Address    string    `json:"address,omitempty" validate:"max=500"`
	Phone      string    `json:"phone,omitempty" validate:"omitempty,phone"`
	Email      string    `json:"email,omitempty" validate:"omitempty,email"`
	Website    string    `json:"website,omitempty" validate:"max=300"`
	Notes      string    `json:"notes,omitempty"`
	LogoURL    string    `json:"logo_url,omitempty"`
	Confidence float64   `json:"confidence" validate:"gte=0,lte=1"`
	CreatedAt  time.Time `json:"created_at"`
}

// VendorFromCandidate copies a reviewed candidate into a persistable record.
func VendorFromCandidate(sessionID string, c VendorCandidate) Vendor {
	return Vendor{
		SessionID:  sessionID,
		Name:       c.Name,
		Address:    c.Address,
		Phone:      c.Phone,
		Email:      c.Email,
		Website:    c.Website,
		Notes:      c.Notes,
		LogoURL:    c.LogoURL,
		Confidence: c.Confidence,
	}
}
