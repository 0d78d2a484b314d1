package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/vendor-intake/internal/model"
)

// Column lists shared by both backends. Nullable columns are coalesced so
// rows scan into plain Go values.
const (
	vendorColumns  = `id, session_id, name, address, phone, email, website, notes, logo_url, confidence, created_at`
	sessionColumns = `id, source_kind, source_name, total_lines, blocks_found, vendors_extracted,
		overall_confidence, low_confidence_count, COALESCE(expected_count, 0), warnings, created_at`
	selectVendorColumns = `id, COALESCE(session_id, ''), name, address, phone, email, website, notes, logo_url, confidence, created_at`
)

type scannable interface {
	Scan(dest ...any) error
}

func scanVendor(row scannable) (*model.Vendor, error) {
	var v model.Vendor
	err := row.Scan(&v.ID, &v.SessionID, &v.Name, &v.Address, &v.Phone, &v.Email, &v.Website,
		&v.Notes, &v.LogoURL, &v.Confidence, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func prepareVendor(v *model.Vendor, now time.Time) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
}

func prepareSession(s *model.ImportSession) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Warnings == nil {
		s.Warnings = model.Warnings{}
	}
}

func attachVendors(sessionID string, vs []model.Vendor) {
	for i := range vs {
		if vs[i].SessionID == "" {
			vs[i].SessionID = sessionID
		}
	}
}

func finishSession(s *model.ImportSession, expected int, warnings []byte) error {
	if expected > 0 {
		s.ExpectedCount = &expected
	}
	s.Warnings = model.Warnings{}
	if len(warnings) == 0 {
		return nil
	}
	return json.Unmarshal(warnings, &s.Warnings)
}

func vendorArgs(v *model.Vendor) []any {
	return []any{
		v.ID, nullString(v.SessionID), v.Name, v.Address, v.Phone, v.Email, v.Website,
		v.Notes, v.LogoURL, v.Confidence, v.CreatedAt,
	}
}
