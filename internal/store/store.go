// Package store persists import sessions and accepted vendors.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vendor-intake/internal/model"
)

// ErrNotFound is returned when a session or vendor does not exist.
var ErrNotFound = eris.New("store: not found")

const defaultListLimit = 100

// VendorFilter specifies criteria for listing vendors.
type VendorFilter struct {
	SessionID string `json:"session_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

func (f VendorFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines the persistence interface for accepted vendors.
type Store interface {
	// Sessions
	SaveSession(ctx context.Context, session *model.ImportSession) error
	GetSession(ctx context.Context, id string) (*model.ImportSession, error)

	// Vendors. Every vendor is validated before anything is written; IDs and
	// timestamps are assigned when empty.
	SaveVendor(ctx context.Context, v *model.Vendor) (string, error)
	SaveVendors(ctx context.Context, vs []model.Vendor) ([]string, error)
	GetVendor(ctx context.Context, id string) (*model.Vendor, error)
	ListVendors(ctx context.Context, filter VendorFilter) ([]model.Vendor, error)

	// SaveImport writes a session and its vendors in one transaction. Vendors
	// without a session ID are attached to the session.
	SaveImport(ctx context.Context, session *model.ImportSession, vs []model.Vendor) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
