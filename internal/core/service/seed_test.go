package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prevencar/inspection-system/internal/core/domain"
)

func newSeedFixture() (*Seeder, *stubUserRepo, *stubServiceRepo, *stubIndicationRepo) {
	users := newStubUserRepo()
	services := &stubServiceRepo{items: map[string]*domain.ServiceItem{}}
	indications := &stubIndicationRepo{items: map[string]*domain.Indication{}}
	return NewSeeder(users, services, indications, zerolog.Nop()), users, services, indications
}

func TestSeeder_FreshInstallation(t *testing.T) {
	seeder, users, services, indications := newSeedFixture()

	err := seeder.Run(context.Background(), SeedAdmin{
		Name:     "Admin Principal",
		Email:    "Admin@Prevencar.com.br",
		Password: "senha-forte",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(services.items) != 5 {
		t.Fatalf("services seeded = %d, want 5", len(services.items))
	}
	var cautelar *domain.ServiceItem
	for _, item := range services.items {
		if item.ID == "" {
			t.Errorf("service %q has no id", item.Name)
		}
		if item.Name == "Laudo Cautelar" {
			cautelar = item
		}
	}
	if cautelar == nil {
		t.Fatal("Laudo Cautelar not seeded")
	}
	if got := cautelar.PriceFor(domain.CategoryAutomoveis); got != 250 {
		t.Errorf("Laudo Cautelar for Automóveis = %v, want 250", got)
	}
	if got := cautelar.PriceFor(domain.CategoryCarretas); got != 600 {
		t.Errorf("Laudo Cautelar for Carretas = %v, want 600", got)
	}
	if got := cautelar.PriceFor("Trator"); got != 250 {
		t.Errorf("Laudo Cautelar fallback = %v, want Outros row 250", got)
	}

	if len(indications.items) != 2 {
		t.Fatalf("indications seeded = %d, want 2", len(indications.items))
	}

	all, _ := users.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("users seeded = %d, want 1", len(all))
	}
	admin := all[0]
	if admin.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", admin.Role)
	}
	if admin.Email != "admin@prevencar.com.br" {
		t.Errorf("email not normalized: %q", admin.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("senha-forte")) != nil {
		t.Error("stored hash does not match the configured password")
	}
}

func TestSeeder_SecondRunIsNoop(t *testing.T) {
	seeder, users, services, _ := newSeedFixture()
	admin := SeedAdmin{Email: "admin@prevencar.com.br", Password: "senha-forte"}

	if err := seeder.Run(context.Background(), admin); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	firstIDs := make(map[string]bool)
	for id := range services.items {
		firstIDs[id] = true
	}

	if err := seeder.Run(context.Background(), admin); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(services.items) != 5 {
		t.Fatalf("services after second run = %d, want 5", len(services.items))
	}
	for id := range services.items {
		if !firstIDs[id] {
			t.Errorf("service %s re-created on second run", id)
		}
	}
	all, _ := users.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("users after second run = %d, want 1", len(all))
	}
}

func TestSeeder_AdminSkippedWithoutCredentials(t *testing.T) {
	seeder, users, services, _ := newSeedFixture()

	if err := seeder.Run(context.Background(), SeedAdmin{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	all, _ := users.List(context.Background())
	if len(all) != 0 {
		t.Fatalf("users = %d, want none without configured credentials", len(all))
	}
	// The catalog still comes up even when no admin is configured.
	if len(services.items) != 5 {
		t.Fatalf("services = %d, want 5", len(services.items))
	}
}

func TestSeeder_ExistingUsersUntouched(t *testing.T) {
	seeder, users, _, _ := newSeedFixture()
	seedUser(t, users, "u-1", "Maria", "maria@prevencar.com.br", "antiga", domain.RoleFinanceiro)

	err := seeder.Run(context.Background(), SeedAdmin{
		Email:    "admin@prevencar.com.br",
		Password: "senha-forte",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	all, _ := users.List(context.Background())
	if len(all) != 1 {
		t.Fatalf("users = %d, want the pre-existing one only", len(all))
	}
	if all[0].Email != "maria@prevencar.com.br" {
		t.Errorf("unexpected user %q", all[0].Email)
	}
}
