package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prevencar/inspection-system/internal/core/domain"
	"github.com/prevencar/inspection-system/internal/core/ports"
)

// SeedAdmin carries the credentials for the bootstrap administrator. User
// creation over the API requires an admin, so a fresh installation needs one
// planted before anyone can log in.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// Seeder populates an empty installation with the default service catalog,
// the starter referral partners and a first administrator. Each step runs
// only when its collection is empty, so the seeder is safe to run on every
// boot.
type Seeder struct {
	users       ports.UserRepository
	services    ports.ServiceRepository
	indications ports.IndicationRepository
	logger      zerolog.Logger
}

func NewSeeder(
	users ports.UserRepository,
	services ports.ServiceRepository,
	indications ports.IndicationRepository,
	logger zerolog.Logger,
) *Seeder {
	return &Seeder{
		users:       users,
		services:    services,
		indications: indications,
		logger:      logger,
	}
}

// Run seeds the catalog, the referral partners and the first administrator.
func (s *Seeder) Run(ctx context.Context, admin SeedAdmin) error {
	if err := s.seedServices(ctx); err != nil {
		return fmt.Errorf("seed services: %w", err)
	}
	if err := s.seedIndications(ctx); err != nil {
		return fmt.Errorf("seed indications: %w", err)
	}
	if err := s.seedAdmin(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func (s *Seeder) seedServices(ctx context.Context) error {
	existing, err := s.services.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	items := defaultServices()
	for _, item := range items {
		item.ID = uuid.NewString()
		if err := s.services.Save(ctx, item); err != nil {
			return err
		}
	}
	s.logger.Info().Int("services", len(items)).Msg("default service catalog seeded")
	return nil
}

func (s *Seeder) seedIndications(ctx context.Context) error {
	existing, err := s.indications.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	items := defaultIndications()
	for _, ind := range items {
		ind.ID = uuid.NewString()
		if err := s.indications.Save(ctx, ind); err != nil {
			return err
		}
	}
	s.logger.Info().Int("indications", len(items)).Msg("default referral partners seeded")
	return nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin SeedAdmin) error {
	existing, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		s.logger.Warn().Msg("no users exist and admin credentials are not configured, logins will be impossible until ADMIN_EMAIL and ADMIN_PASSWORD are set")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Admin Principal"
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return err
	}
	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("bootstrap administrator created")
	return nil
}

// defaultServices is the catalog an installation starts with.
func defaultServices() []*domain.ServiceItem {
	return []*domain.ServiceItem{
		{
			Name:        "Laudo de Transferência",
			Description: "Laudo obrigatório para transferência.",
			Prices: map[domain.VehicleCategory]float64{
				domain.CategoryMotocicletas: 80,
				domain.CategoryAutomoveis:   100,
				domain.CategoryUtilitarios:  120,
				domain.CategoryCaminhoes:    200,
				domain.CategoryCarretas:     250,
				domain.CategoryOutros:       100,
			},
		},
		{
			Name:        "Laudo Cautelar",
			Description: "Análise completa da estrutura.",
			Prices: map[domain.VehicleCategory]float64{
				domain.CategoryMotocicletas: 200,
				domain.CategoryAutomoveis:   250,
				domain.CategoryUtilitarios:  300,
				domain.CategoryCaminhoes:    500,
				domain.CategoryCarretas:     600,
				domain.CategoryOutros:       250,
			},
		},
		{
			Name:        "Vistoria Prévia",
			Description: "Para seguradoras.",
			Prices: map[domain.VehicleCategory]float64{
				domain.CategoryMotocicletas: 120,
				domain.CategoryAutomoveis:   150,
				domain.CategoryUtilitarios:  180,
				domain.CategoryCaminhoes:    300,
				domain.CategoryCarretas:     350,
				domain.CategoryOutros:       150,
			},
		},
		{
			Name:        "Pesquisa",
			Description: "Pesquisa de débitos e restrições.",
			Prices: map[domain.VehicleCategory]float64{
				domain.CategoryMotocicletas: 40,
				domain.CategoryAutomoveis:   50,
				domain.CategoryUtilitarios:  60,
				domain.CategoryCaminhoes:    100,
				domain.CategoryCarretas:     120,
				domain.CategoryOutros:       50,
			},
		},
		{
			Name:        "Prevenscan",
			Description: "Scanner completo.",
			Prices: map[domain.VehicleCategory]float64{
				domain.CategoryMotocicletas: 240,
				domain.CategoryAutomoveis:   300,
				domain.CategoryUtilitarios:  360,
				domain.CategoryCaminhoes:    600,
				domain.CategoryCarretas:     700,
				domain.CategoryOutros:       300,
			},
		},
	}
}

// defaultIndications are the starter referral partners.
func defaultIndications() []*domain.Indication {
	return []*domain.Indication{
		{
			Name:     "Peças AutoSul",
			Document: "12.345.678/0001-90",
			Phone:    "(11) 98888-7777",
			Email:    "contato@autosul.com",
			CEP:      "01001-000",
			Address:  "Rua Principal",
			Number:   "100",
		},
		{
			Name:     "Mecânica Rápida",
			Document: "98.765.432/0001-10",
			Phone:    "(11) 97777-6666",
			Email:    "contato@mecanica.com",
			CEP:      "02002-000",
			Address:  "Av Secundaria",
			Number:   "200",
		},
	}
}
