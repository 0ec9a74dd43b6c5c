package api

import (
	"context"
	"errors"
	"time"

	"anara-skills/registrar/internal/auth"
	"anara-skills/registrar/internal/common"
	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/db"
	"anara-skills/registrar/internal/db/repositories"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/providers"
	"anara-skills/registrar/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// Infra is everything main has connected before the services are built.
type Infra struct {
	ORM         *gorm.DB
	SQL         *sqlx.DB
	Cache       common.CacheInterface
	Storage     providers.DocumentStorage
	Email       providers.EmailSender
	Tokens      *auth.TokenIssuer
	Metrics     *metrics.MetricsRegistry
	FrontendURL string
}

type Repositories struct {
	Registrants *repositories.RegistrantRepository
	Stats       *repositories.StatsRepository
}

type Services struct {
	CandidateOTP OTPGate
	VolunteerOTP OTPGate
	Registration Registrar
	Accounts     AccountManager
	Payments     PaymentWorkflow
	Admin        Dashboard
	Catalog      Catalog
	Assets       AssetLibrary
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Tokens   *auth.TokenIssuer
	Health   HealthChecks
}

func InitDependencies(infra Infra) (*Dependencies, error) {

	repos := &Repositories{
		Registrants: repositories.NewRegistrantRepository(infra.ORM),
		Stats:       repositories.NewStatsRepository(infra.SQL),
	}

	candidateOTP := services.NewOTPService(constants.RoleCandidate, infra.Cache, infra.Email, repos.Registrants.CandidateEmailExists, infra.Metrics)
	volunteerOTP := services.NewOTPService(constants.RoleVolunteer, infra.Cache, infra.Email, repos.Registrants.VolunteerEmailExists, infra.Metrics)
	allocator := services.NewIdentifierAllocator(infra.ORM, infra.Metrics)

	svcs := &Services{
		CandidateOTP: candidateOTP,
		VolunteerOTP: volunteerOTP,
		Registration: services.NewRegistrationService(infra.ORM, allocator, infra.Storage, infra.Email, candidateOTP, volunteerOTP, infra.Metrics),
		Accounts:     services.NewAccountService(infra.ORM, infra.Tokens, infra.Email, infra.FrontendURL, infra.Metrics),
		Payments:     services.NewPaymentService(infra.ORM, infra.Metrics),
		Admin:        services.NewAdminService(infra.ORM, repos.Stats),
		Catalog:      services.NewCatalogService(infra.ORM, infra.Storage, infra.Cache, infra.Metrics),
		Assets:       services.NewAssetService(infra.ORM, infra.Storage, infra.Email, infra.Metrics),
	}

	health := HealthChecks{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := infra.ORM.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}
	if infra.SQL != nil {
		health["postgres_reporting"] = func(ctx context.Context) error {
			return db.Ping(ctx, infra.SQL)
		}
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Tokens:   infra.Tokens,
		Health:   health,
	}, nil
}

// CandidateBlockStatus backs the blocked candidate middleware.
func (d *Dependencies) CandidateBlockStatus(ctx context.Context, id string) (bool, bool, error) {
	c, err := d.Repo.Registrants.FindCandidateByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, c.IsBlocked, nil
}
