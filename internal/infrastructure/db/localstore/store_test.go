package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

func fiche(id, date, plate string, payment domain.PaymentStatus, total float64) *domain.Inspection {
	return &domain.Inspection{
		ID:            id,
		Date:          date,
		MesReferencia: date[:7],
		LicensePlate:  plate,
		VehicleModel:  "Gol 1.6",
		Client:        domain.Client{Name: "João da Silva"},
		Status:        domain.StatusIniciada,
		PaymentStatus: payment,
		TotalValue:    total,
		SelectedServices: []domain.SelectedService{
			{ServiceID: "svc-laudo", Name: "Laudo Cautelar", BaseValue: total, ChargedValue: total},
		},
	}
}

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Inspections().Create(ctx, fiche("f1", "2025-03-10", "ABC1D23", domain.PaymentAPagar, 250)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Closures().Insert(ctx, &domain.Closure{Mes: "2025-03", Status: domain.ClosureEmAberto}); err != nil {
		t.Fatalf("insert closure: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "prevencar.json")); err != nil {
		t.Fatalf("store file missing: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Inspections().FindByID(ctx, "f1")
	if err != nil {
		t.Fatalf("find after reopen: %v", err)
	}
	if got.LicensePlate != "ABC1D23" || got.TotalValue != 250 {
		t.Errorf("fiche = %+v", got)
	}
	closure, err := reopened.Closures().FindByMes(ctx, "2025-03")
	if err != nil || closure.Status != domain.ClosureEmAberto {
		t.Errorf("closure = %+v err = %v", closure, err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	if err := store.Inspections().Create(ctx, fiche("f1", "2025-03-10", "ABC1D23", domain.PaymentAPagar, 250)); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.Inspections().FindByID(ctx, "f1")
	got.LicensePlate = "XXX0X00"

	again, _ := store.Inspections().FindByID(ctx, "f1")
	if again.LicensePlate != "ABC1D23" {
		t.Error("mutating a returned fiche must not affect the store")
	}
}

func TestInspectionList_FilterSortPagination(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	repo := store.Inspections()

	seed := []*domain.Inspection{
		fiche("f1", "2025-03-10", "ABC1D23", domain.PaymentPix, 250),
		fiche("f2", "2025-03-20", "DEF4G56", domain.PaymentAPagar, 220),
		fiche("f3", "2025-02-05", "HIJ7K89", domain.PaymentAPagar, 300),
	}
	for _, f := range seed {
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("seed %s: %v", f.ID, err)
		}
	}

	// newest date first
	all, total, err := repo.List(ctx, ports.ListInspectionsFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("total = %d, rows = %d", total, len(all))
	}
	if all[0].ID != "f2" || all[2].ID != "f3" {
		t.Errorf("order = %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	// month filter
	feb, total, err := repo.List(ctx, ports.ListInspectionsFilter{Mes: "2025-02", Page: 1, Limit: 10})
	if err != nil || total != 1 || feb[0].ID != "f3" {
		t.Errorf("mes filter: rows = %v total = %d err = %v", feb, total, err)
	}

	// payment + value range
	rows, total, err := repo.List(ctx, ports.ListInspectionsFilter{
		PaymentStatus: string(domain.PaymentAPagar),
		MinValue:      250,
		Page:          1,
		Limit:         10,
	})
	if err != nil || total != 1 || rows[0].ID != "f3" {
		t.Errorf("combined filter: rows = %v total = %d err = %v", rows, total, err)
	}

	// free search matches the plate case-insensitively
	rows, total, err = repo.List(ctx, ports.ListInspectionsFilter{Search: "def4", Page: 1, Limit: 10})
	if err != nil || total != 1 || rows[0].ID != "f2" {
		t.Errorf("search: rows = %v total = %d err = %v", rows, total, err)
	}

	// pagination keeps the total of all matches
	page2, total, err := repo.List(ctx, ports.ListInspectionsFilter{Page: 2, Limit: 2})
	if err != nil || total != 3 || len(page2) != 1 {
		t.Errorf("page 2: rows = %d total = %d err = %v", len(page2), total, err)
	}
	if page2[0].ID != "f3" {
		t.Errorf("page 2 row = %s", page2[0].ID)
	}
}

func TestClosureRepository_DuplicateMonth(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()

	if err := store.Closures().Insert(ctx, &domain.Closure{Mes: "2025-03", Status: domain.ClosureEmAberto}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err = store.Closures().Insert(ctx, &domain.Closure{Mes: "2025-03", Status: domain.ClosureEmAberto})
	if !errors.Is(err, domain.ErrClosureExists) {
		t.Fatalf("err = %v, want ErrClosureExists", err)
	}
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	users := store.Users()

	if _, err := users.Create(ctx, &domain.User{ID: "u1", Email: "ana@prevencar.com.br"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, &domain.User{ID: "u2", Email: "ana@prevencar.com.br"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
	if _, err := users.FindByEmail(ctx, "ana@prevencar.com.br"); err != nil {
		t.Fatalf("find by email: %v", err)
	}
}

func TestPasswordResetRepository_MarkUsed(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	resets := store.PasswordResets()

	reset := &domain.PasswordReset{Token: "tok-1", UserID: "u1", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	if err := resets.Insert(ctx, reset); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := resets.MarkUsed(ctx, "tok-1"); err != nil {
		t.Fatalf("mark used: %v", err)
	}
	stored, err := resets.FindByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.UsedAt.IsZero() {
		t.Error("used_at not stamped")
	}
}
