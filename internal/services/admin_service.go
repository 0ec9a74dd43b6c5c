package services

import (
	"context"
	"errors"

	"anara-skills/registrar/internal/db/repositories"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type VolunteerSummary struct {
	gormModels.Volunteer
	CandidateCount int64 `json:"candidate_count"`
}

type VolunteerBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	RegNumber string `json:"reg_number"`
}

type CandidateDetail struct {
	gormModels.Candidate
	Volunteer *VolunteerBrief `json:"volunteer,omitempty"`
}

type VolunteerWithCandidates struct {
	Volunteer  *gormModels.Volunteer  `json:"volunteer"`
	Candidates []gormModels.Candidate `json:"candidates"`
	Stats      *dtos.CandidateStats   `json:"stats"`
}

// AdminService backs the admin dashboard and the volunteer's own view of
// their candidates.
type AdminService struct {
	registrants *repositories.RegistrantRepository
	stats       *repositories.StatsRepository
}

func NewAdminService(db *gorm.DB, stats *repositories.StatsRepository) *AdminService {
	return &AdminService{
		registrants: repositories.NewRegistrantRepository(db),
		stats:       stats,
	}
}

func storageError(err error) error {
	return dependencyError(CodeStorageFailed, "failed to load dashboard data", err)
}

func (s *AdminService) ListVolunteers(ctx context.Context) ([]VolunteerSummary, error) {
	var (
		volunteers []gormModels.Volunteer
		counts     []dtos.VolunteerCandidateCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		volunteers, err = s.registrants.ListVolunteers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.stats.CandidateCountPerVolunteer(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storageError(err)
	}

	byReg := make(map[string]int64, len(counts))
	for _, c := range counts {
		byReg[c.VolunteerRegNumber] = c.CandidateCount
	}
	out := make([]VolunteerSummary, len(volunteers))
	for i, v := range volunteers {
		out[i] = VolunteerSummary{Volunteer: v, CandidateCount: byReg[v.RegNumber]}
	}
	return out, nil
}

func (s *AdminService) ListCandidates(ctx context.Context) ([]CandidateDetail, error) {
	var (
		candidates []gormModels.Candidate
		volunteers []gormModels.Volunteer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.registrants.ListCandidates(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		volunteers, err = s.registrants.ListVolunteers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storageError(err)
	}

	byReg := make(map[string]*VolunteerBrief, len(volunteers))
	for _, v := range volunteers {
		byReg[v.RegNumber] = &VolunteerBrief{ID: v.ID, Name: v.Name, Email: v.Email, RegNumber: v.RegNumber}
	}
	out := make([]CandidateDetail, len(candidates))
	for i, c := range candidates {
		out[i] = CandidateDetail{Candidate: c, Volunteer: byReg[c.VolunteerRegNumber]}
	}
	return out, nil
}

func (s *AdminService) Totals(ctx context.Context) (*dtos.RegistrantTotals, error) {
	totals, err := s.stats.Totals(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return totals, nil
}

func (s *AdminService) CandidateCountPerVolunteer(ctx context.Context) ([]dtos.VolunteerCandidateCount, error) {
	counts, err := s.stats.CandidateCountPerVolunteer(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return counts, nil
}

func (s *AdminService) volunteerView(ctx context.Context, v *gormModels.Volunteer) (*VolunteerWithCandidates, error) {
	view := &VolunteerWithCandidates{Volunteer: v}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.Candidates, err = s.registrants.CandidatesOfVolunteer(gctx, v.RegNumber)
		return err
	})
	g.Go(func() error {
		var err error
		view.Stats, err = s.stats.CandidateStatsForVolunteer(gctx, v.RegNumber)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storageError(err)
	}
	return view, nil
}

// VolunteerWithCandidates looks a volunteer up by registration number.
func (s *AdminService) VolunteerWithCandidates(ctx context.Context, regNumber string) (*VolunteerWithCandidates, error) {
	v, err := s.registrants.FindVolunteerByRegNumber(ctx, regNumber)
	if err != nil {
		return nil, notFoundOr(err, "Volunteer not found.")
	}
	return s.volunteerView(ctx, v)
}

// CandidatesOfVolunteer is the logged in volunteer's own view.
func (s *AdminService) CandidatesOfVolunteer(ctx context.Context, volunteerID string) (*VolunteerWithCandidates, error) {
	v, err := s.registrants.FindVolunteerByID(ctx, volunteerID)
	if err != nil {
		return nil, notFoundOr(err, "Volunteer not found.")
	}
	return s.volunteerView(ctx, v)
}

func (s *AdminService) CandidateByRegNumber(ctx context.Context, regNumber string) (*CandidateDetail, error) {
	c, err := s.registrants.FindCandidateByRegNumber(ctx, regNumber)
	if err != nil {
		return nil, notFoundOr(err, "Candidate not found.")
	}
	detail := &CandidateDetail{Candidate: *c}
	if v, err := s.registrants.FindVolunteerByRegNumber(ctx, c.VolunteerRegNumber); err == nil {
		detail.Volunteer = &VolunteerBrief{ID: v.ID, Name: v.Name, Email: v.Email, RegNumber: v.RegNumber}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storageError(err)
	}
	return detail, nil
}

func (s *AdminService) ToggleVolunteerBlock(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error) {
	return s.toggle(ctx, &gormModels.Volunteer{}, regNumber, "Volunteer not found.")
}

func (s *AdminService) ToggleCandidateBlock(ctx context.Context, regNumber string) (*dtos.BlockToggleResponse, error) {
	return s.toggle(ctx, &gormModels.Candidate{}, regNumber, "Candidate not found.")
}

func (s *AdminService) toggle(ctx context.Context, model interface{}, regNumber, missing string) (*dtos.BlockToggleResponse, error) {
	blocked, err := s.registrants.ToggleBlocked(ctx, model, regNumber)
	if err != nil {
		return nil, notFoundOr(err, missing)
	}
	logging.Info("Block status toggled", "reg_number", regNumber, "is_blocked", blocked)
	return &dtos.BlockToggleResponse{RegNumber: regNumber, IsBlocked: blocked}, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(KindNotFound, CodeNotFound, message)
	}
	return storageError(err)
}
