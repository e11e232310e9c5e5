// Package localstore is a single-file JSON persistence driver for
// installations that run without MongoDB. All collections live in one
// document guarded by one lock; every mutation rewrites the file atomically.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

const storeFile = "prevencar.json"

// payload mirrors the browser-era storage layout, one key per collection.
type payload struct {
	Inspections    []*domain.Inspection     `json:"prevencar_inspections"`
	Indications    []*domain.Indication     `json:"prevencar_indications"`
	Services       []*domain.ServiceItem    `json:"prevencar_services"`
	Closures       []*domain.Closure        `json:"prevencar_fechamentos_mensais"`
	FinancialLogs  []*domain.FinancialEvent `json:"prevencar_financial_logs"`
	ClosureLogs    []*domain.ClosureLog     `json:"prevencar_fechamento_logs"`
	Users          []*domain.User           `json:"prevencar_users"`
	PasswordResets []*domain.PasswordReset  `json:"prevencar_password_resets"`
}

// Store owns the JSON file and serialises all access to it.
type Store struct {
	path string

	mu   sync.RWMutex
	data payload
}

// Open loads (or initialises) the store file under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore mkdir: %w", err)
	}

	s := &Store{path: filepath.Join(dir, storeFile)}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore read: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("localstore parse %s: %w", s.path, err)
		}
	}
	return s, nil
}

// persist writes the whole document via a temp file rename. Caller must hold
// the write lock.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("localstore write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("localstore rename: %w", err)
	}
	return nil
}

// Inspections returns the inspection repository view of the store.
func (s *Store) Inspections() *InspectionRepository { return &InspectionRepository{store: s} }

// Services returns the service catalog repository view of the store.
func (s *Store) Services() *ServiceRepository { return &ServiceRepository{store: s} }

// Indications returns the referral partner repository view of the store.
func (s *Store) Indications() *IndicationRepository { return &IndicationRepository{store: s} }

// Closures returns the closure repository view of the store.
func (s *Store) Closures() *ClosureRepository { return &ClosureRepository{store: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// PasswordResets returns the reset token repository view of the store.
func (s *Store) PasswordResets() *PasswordResetRepository { return &PasswordResetRepository{store: s} }

// Audit returns the financial log repository view of the store.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{store: s} }
