package handler

import (
	"context"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
)

type stubLeadsRepository struct {
	upsert     func(ctx context.Context, lead *entity.Lead) error
	getByID    func(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	list       func(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error)
	bulkUpsert func(ctx context.Context, records []repository.BulkUpsertLeadInput) (repository.BulkUpsertResult, error)
	candidates func(ctx context.Context, minScore float64) ([]entity.Lead, error)
}

func (s *stubLeadsRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	if s.upsert != nil {
		return s.upsert(ctx, lead)
	}
	return nil
}

func (s *stubLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	if s.list != nil {
		return s.list(ctx, filter)
	}
	return nil, nil
}

func (s *stubLeadsRepository) BulkUpsert(ctx context.Context, records []repository.BulkUpsertLeadInput) (repository.BulkUpsertResult, error) {
	if s.bulkUpsert != nil {
		return s.bulkUpsert(ctx, records)
	}
	return repository.BulkUpsertResult{Inserted: len(records), Total: len(records)}, nil
}

func (s *stubLeadsRepository) UpdateScore(ctx context.Context, id uuid.UUID, score float64, details map[string]float64) error {
	return nil
}

func (s *stubLeadsRepository) Candidates(ctx context.Context, minScore float64) ([]entity.Lead, error) {
	if s.candidates != nil {
		return s.candidates(ctx, minScore)
	}
	return nil, nil
}

type stubResolver struct{}

func (stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return []*net.MX{{Host: "mx." + domain}}, nil
}

func newLeadsService(repo repository.LeadsRepository) *service.LeadsService {
	validator := service.NewContactValidator("BR", service.WithDNSResolver(stubResolver{}))
	return service.NewLeadsService(repo, nil, validator, scoring.DefaultWeights)
}

func sampleLead(name string, score float64) entity.Lead {
	sector := entity.SectorBanking
	size := entity.SizeLarge
	return entity.Lead{
		ID:          uuid.New(),
		CompanyName: name,
		Sector:      &sector,
		CompanySize: &size,
		Score:       score,
		ExtractedAt: time.Now(),
		UpdatedAt:   time.Now(),
	}
}
