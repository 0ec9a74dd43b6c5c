package repositories

import (
	"context"
	"fmt"

	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/models/dtos"

	"github.com/jmoiron/sqlx"
)

// StatsRepository runs the dashboard aggregations through sqlx.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db}
}

func (r *StatsRepository) Totals(ctx context.Context) (*dtos.RegistrantTotals, error) {
	var totals dtos.RegistrantTotals
	if err := r.db.GetContext(ctx, &totals, constants.CountRegistrants); err != nil {
		return nil, fmt.Errorf("failed to count registrants: %w", err)
	}
	return &totals, nil
}

func (r *StatsRepository) CandidateCountPerVolunteer(ctx context.Context) ([]dtos.VolunteerCandidateCount, error) {
	out := []dtos.VolunteerCandidateCount{}
	if err := r.db.SelectContext(ctx, &out, constants.CandidateCountPerVolunteer); err != nil {
		return nil, fmt.Errorf("failed to count candidates per volunteer: %w", err)
	}
	return out, nil
}

func (r *StatsRepository) CandidateCountForVolunteer(ctx context.Context, regNumber string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(constants.CandidateCountForVolunteer), regNumber); err != nil {
		return 0, fmt.Errorf("failed to count candidates for %s: %w", regNumber, err)
	}
	return count, nil
}

func (r *StatsRepository) CandidateStatsForVolunteer(ctx context.Context, regNumber string) (*dtos.CandidateStats, error) {
	var stats dtos.CandidateStats
	if err := r.db.GetContext(ctx, &stats, r.db.Rebind(constants.CandidateStatsForVolunteer), regNumber); err != nil {
		return nil, fmt.Errorf("failed to load candidate stats for %s: %w", regNumber, err)
	}
	return &stats, nil
}
