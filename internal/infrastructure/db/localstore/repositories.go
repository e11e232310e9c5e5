package localstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// InspectionRepository implements ports.InspectionRepository on the store.
type InspectionRepository struct {
	store *Store
}

func (r *InspectionRepository) Create(_ context.Context, i *domain.Inspection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *i
	r.store.data.Inspections = append(r.store.data.Inspections, &cp)
	return r.store.persist()
}

func (r *InspectionRepository) Update(_ context.Context, i *domain.Inspection) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Inspections {
		if stored.ID == i.ID {
			cp := *i
			r.store.data.Inspections[idx] = &cp
			return r.store.persist()
		}
	}
	return domain.ErrInspectionNotFound
}

func (r *InspectionRepository) FindByID(_ context.Context, id string) (*domain.Inspection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Inspections {
		if stored.ID == id {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrInspectionNotFound
}

func (r *InspectionRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Inspections {
		if stored.ID == id {
			r.store.data.Inspections = append(r.store.data.Inspections[:idx], r.store.data.Inspections[idx+1:]...)
			return r.store.persist()
		}
	}
	return domain.ErrInspectionNotFound
}

func (r *InspectionRepository) List(_ context.Context, filter ports.ListInspectionsFilter) ([]*domain.Inspection, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*domain.Inspection
	for _, stored := range r.store.data.Inspections {
		if matchesFilter(stored, filter) {
			matched = append(matched, stored)
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		if matched[a].Date != matched[b].Date {
			return matched[a].Date > matched[b].Date
		}
		return matched[a].CreatedAt.After(matched[b].CreatedAt)
	})

	total := int64(len(matched))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*domain.Inspection, 0, end-start)
	for _, stored := range matched[start:end] {
		cp := *stored
		out = append(out, &cp)
	}
	return out, total, nil
}

func matchesFilter(i *domain.Inspection, f ports.ListInspectionsFilter) bool {
	if f.Status != "" && string(i.Status) != f.Status {
		return false
	}
	if f.PaymentStatus != "" && string(i.PaymentStatus) != f.PaymentStatus {
		return false
	}
	if f.IndicationID != "" && i.IndicationID != f.IndicationID {
		return false
	}
	if f.ServiceName != "" && !i.HasService(f.ServiceName) {
		return false
	}
	if f.Mes != "" && i.MesReferencia != f.Mes {
		return false
	}
	if f.DateFrom != "" && i.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && i.Date > f.DateTo {
		return false
	}
	if f.MinValue > 0 && i.TotalValue < f.MinValue {
		return false
	}
	if f.MaxValue > 0 && i.TotalValue > f.MaxValue {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(i.LicensePlate), needle) &&
			!strings.Contains(strings.ToLower(i.VehicleModel), needle) &&
			!strings.Contains(strings.ToLower(i.Client.Name), needle) {
			return false
		}
	}
	return true
}

func (r *InspectionRepository) FindByMes(_ context.Context, mes string) ([]*domain.Inspection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Inspection
	for _, stored := range r.store.data.Inspections {
		if stored.MesReferencia == mes {
			cp := *stored
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Date != out[b].Date {
			return out[a].Date < out[b].Date
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out, nil
}

// ServiceRepository implements ports.ServiceRepository on the store.
type ServiceRepository struct {
	store *Store
}

func (r *ServiceRepository) Save(_ context.Context, s *domain.ServiceItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *s
	for idx, stored := range r.store.data.Services {
		if stored.ID == s.ID {
			r.store.data.Services[idx] = &cp
			return r.store.persist()
		}
	}
	r.store.data.Services = append(r.store.data.Services, &cp)
	return r.store.persist()
}

func (r *ServiceRepository) FindByID(_ context.Context, id string) (*domain.ServiceItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Services {
		if stored.ID == id {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrServiceNotFound
}

func (r *ServiceRepository) List(_ context.Context) ([]*domain.ServiceItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.ServiceItem, 0, len(r.store.data.Services))
	for _, stored := range r.store.data.Services {
		cp := *stored
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *ServiceRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Services {
		if stored.ID == id {
			r.store.data.Services = append(r.store.data.Services[:idx], r.store.data.Services[idx+1:]...)
			return r.store.persist()
		}
	}
	return domain.ErrServiceNotFound
}

// IndicationRepository implements ports.IndicationRepository on the store.
type IndicationRepository struct {
	store *Store
}

func (r *IndicationRepository) Save(_ context.Context, i *domain.Indication) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *i
	for idx, stored := range r.store.data.Indications {
		if stored.ID == i.ID {
			r.store.data.Indications[idx] = &cp
			return r.store.persist()
		}
	}
	r.store.data.Indications = append(r.store.data.Indications, &cp)
	return r.store.persist()
}

func (r *IndicationRepository) FindByID(_ context.Context, id string) (*domain.Indication, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Indications {
		if stored.ID == id {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrIndicationNotFound
}

func (r *IndicationRepository) List(_ context.Context) ([]*domain.Indication, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Indication, 0, len(r.store.data.Indications))
	for _, stored := range r.store.data.Indications {
		cp := *stored
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *IndicationRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Indications {
		if stored.ID == id {
			r.store.data.Indications = append(r.store.data.Indications[:idx], r.store.data.Indications[idx+1:]...)
			return r.store.persist()
		}
	}
	return domain.ErrIndicationNotFound
}

// ClosureRepository implements ports.ClosureRepository on the store.
type ClosureRepository struct {
	store *Store
}

func (r *ClosureRepository) Insert(_ context.Context, c *domain.Closure) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.data.Closures {
		if stored.Mes == c.Mes {
			return domain.ErrClosureExists
		}
	}
	cp := *c
	r.store.data.Closures = append(r.store.data.Closures, &cp)
	return r.store.persist()
}

func (r *ClosureRepository) Update(_ context.Context, c *domain.Closure) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Closures {
		if stored.Mes == c.Mes {
			cp := *c
			r.store.data.Closures[idx] = &cp
			return r.store.persist()
		}
	}
	return domain.ErrClosureNotFound
}

func (r *ClosureRepository) FindByMes(_ context.Context, mes string) (*domain.Closure, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Closures {
		if stored.Mes == mes {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrClosureNotFound
}

func (r *ClosureRepository) List(_ context.Context) ([]*domain.Closure, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Closure, 0, len(r.store.data.Closures))
	for _, stored := range r.store.data.Closures {
		cp := *stored
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Mes > out[b].Mes })
	return out, nil
}

func (r *ClosureRepository) AppendLog(_ context.Context, log *domain.ClosureLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *log
	r.store.data.ClosureLogs = append(r.store.data.ClosureLogs, &cp)
	return r.store.persist()
}

func (r *ClosureRepository) ListLogs(_ context.Context, closureID string) ([]*domain.ClosureLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.ClosureLog
	for _, stored := range r.store.data.ClosureLogs {
		if stored.ClosureID == closureID {
			cp := *stored
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].PerformedAt.Before(out[b].PerformedAt) })
	return out, nil
}

// UserRepository implements ports.UserRepository on the store.
type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.data.Users {
		if stored.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	cp := *u
	r.store.data.Users = append(r.store.data.Users, &cp)
	if err := r.store.persist(); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Users {
		if stored.ID == u.ID {
			cp := *u
			r.store.data.Users[idx] = &cp
			return r.store.persist()
		}
	}
	return domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Users {
		if stored.ID == id {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.Users {
		if stored.Email == email {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.store.data.Users))
	for _, stored := range r.store.data.Users {
		cp := *stored
		out = append(out, &cp)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for idx, stored := range r.store.data.Users {
		if stored.ID == id {
			r.store.data.Users = append(r.store.data.Users[:idx], r.store.data.Users[idx+1:]...)
			return r.store.persist()
		}
	}
	return domain.ErrUserNotFound
}

// PasswordResetRepository implements ports.PasswordResetRepository on the
// store. Stale tokens are pruned lazily on insert.
type PasswordResetRepository struct {
	store *Store
}

func (r *PasswordResetRepository) Insert(_ context.Context, reset *domain.PasswordReset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now().UTC()
	kept := r.store.data.PasswordResets[:0]
	for _, stored := range r.store.data.PasswordResets {
		if !stored.Expired(now) {
			kept = append(kept, stored)
		}
	}
	cp := *reset
	r.store.data.PasswordResets = append(kept, &cp)
	return r.store.persist()
}

func (r *PasswordResetRepository) FindByToken(_ context.Context, token string) (*domain.PasswordReset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, stored := range r.store.data.PasswordResets {
		if stored.Token == token {
			cp := *stored
			return &cp, nil
		}
	}
	return nil, domain.ErrResetTokenInvalid
}

func (r *PasswordResetRepository) MarkUsed(_ context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, stored := range r.store.data.PasswordResets {
		if stored.Token == token {
			stored.UsedAt = time.Now().UTC()
			return r.store.persist()
		}
	}
	return domain.ErrResetTokenInvalid
}

// AuditRepository implements ports.AuditRepository on the store.
type AuditRepository struct {
	store *Store
}

func (r *AuditRepository) Append(_ context.Context, e *domain.FinancialEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cp := *e
	r.store.data.FinancialLogs = append(r.store.data.FinancialLogs, &cp)
	return r.store.persist()
}

func (r *AuditRepository) ListByFiche(_ context.Context, ficheID string) ([]*domain.FinancialEvent, error) {
	return r.list(func(e *domain.FinancialEvent) bool { return e.FicheID == ficheID })
}

func (r *AuditRepository) ListByMes(_ context.Context, mes string) ([]*domain.FinancialEvent, error) {
	return r.list(func(e *domain.FinancialEvent) bool { return e.Mes == mes })
}

func (r *AuditRepository) list(match func(*domain.FinancialEvent) bool) ([]*domain.FinancialEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.FinancialEvent
	for _, stored := range r.store.data.FinancialLogs {
		if match(stored) {
			cp := *stored
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].When.Before(out[b].When) })
	return out, nil
}
