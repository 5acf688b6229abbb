package postgres

import (
	"context"
	"fmt"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"gorm.io/gorm"
)

type CandidateRepository struct {
	DB *gorm.DB
}

var _ recommend.CandidateRepository = (*CandidateRepository)(nil)

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{DB: db}
}

// LoadCandidates returns candidates matching filter, best rated first so a
// truncated pool keeps the strongest entries.
func (r *CandidateRepository) LoadCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).Model(&domain.Candidate{})
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", filter.ExcludeIDs)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []domain.Candidate
	err := q.Order("quality_rating DESC").
		Order("popularity DESC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	return rows, nil
}
