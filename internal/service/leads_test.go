package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
)

type capturingLeadsRepo struct {
	lastFilter  dto.LeadFilter
	listResult  []entity.Lead
	candidates  []entity.Lead
	upserted    []*entity.Lead
	bulkRecords []repository.BulkUpsertLeadInput
	bulkResult  repository.BulkUpsertResult
	byID        map[uuid.UUID]*entity.Lead
}

func (r *capturingLeadsRepo) Upsert(ctx context.Context, lead *entity.Lead) error {
	copied := *lead
	r.upserted = append(r.upserted, &copied)
	return nil
}

func (r *capturingLeadsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	if lead, ok := r.byID[id]; ok {
		return lead, nil
	}
	return nil, repository.ErrLeadNotFound
}

func (r *capturingLeadsRepo) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	r.lastFilter = filter
	return r.listResult, nil
}

func (r *capturingLeadsRepo) BulkUpsert(ctx context.Context, records []repository.BulkUpsertLeadInput) (repository.BulkUpsertResult, error) {
	r.bulkRecords = records
	if r.bulkResult.Total == 0 {
		r.bulkResult = repository.BulkUpsertResult{Inserted: len(records), Total: len(records)}
	}
	return r.bulkResult, nil
}

func (r *capturingLeadsRepo) UpdateScore(ctx context.Context, id uuid.UUID, score float64, details map[string]float64) error {
	return nil
}

func (r *capturingLeadsRepo) Candidates(ctx context.Context, minScore float64) ([]entity.Lead, error) {
	return r.candidates, nil
}

func testValidator() *ContactValidator {
	return NewContactValidator("BR", WithDNSResolver(&stubResolver{records: map[string][]*net.MX{
		"example.com": {{Host: "mx.example.com"}},
	}}))
}

func TestListLeads_PaginationDefaults(t *testing.T) {
	repo := &capturingLeadsRepo{}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	if _, err := service.ListLeads(context.Background(), dto.LeadFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.Page != 1 || repo.lastFilter.PerPage != 20 {
		t.Fatalf("expected defaults 1/20, got %d/%d", repo.lastFilter.Page, repo.lastFilter.PerPage)
	}

	if _, err := service.ListLeads(context.Background(), dto.LeadFilter{PerPage: 500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.PerPage != 100 {
		t.Fatalf("expected per_page capped at 100, got %d", repo.lastFilter.PerPage)
	}
}

func TestUpsertLead_NormalizesContactFields(t *testing.T) {
	repo := &capturingLeadsRepo{}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	email := "Contact@Example.com"
	badPhone := "123"
	website := "acme.example.com"
	sector := entity.SectorBanking
	lead := &entity.Lead{
		CompanyName: "Acme",
		Email:       &email,
		Phone:       &badPhone,
		Website:     &website,
		Sector:      &sector,
	}
	if err := service.UpsertLead(context.Background(), lead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lead.Email == nil || *lead.Email != "contact@example.com" {
		t.Fatalf("expected email normalized, got %v", lead.Email)
	}
	if lead.Phone != nil {
		t.Fatalf("expected invalid phone dropped, got %v", *lead.Phone)
	}
	if lead.Website == nil || *lead.Website != "https://acme.example.com" {
		t.Fatalf("expected website sanitized, got %v", lead.Website)
	}
	if lead.Score == 0 {
		t.Fatalf("expected lead scored before persisting")
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestUpsertLead_RequiresCompanyName(t *testing.T) {
	service := NewLeadsService(&capturingLeadsRepo{}, nil, testValidator(), scoring.DefaultWeights)

	if err := service.UpsertLead(context.Background(), &entity.Lead{}); err == nil {
		t.Fatalf("expected error for missing company name")
	}
}

func TestImportLeadsCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"company_name,website,email,phone,sector,company_size,city",
		"Banco Azul,bancoazul.example.com,sales@example.com,(11) 98765-4321,banking,large,Sao Paulo",
		",ignored.example.com,,,technology,small,",
		"Loja Verde,,,not-a-phone,retail,medium,Curitiba",
	}, "\n")

	repo := &capturingLeadsRepo{}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	summary, err := service.ImportLeadsCSV(context.Background(), strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Skipped != 1 {
		t.Fatalf("expected one skipped row, got %d", summary.Skipped)
	}
	if len(repo.bulkRecords) != 2 {
		t.Fatalf("expected two records, got %d", len(repo.bulkRecords))
	}

	first := repo.bulkRecords[0]
	if first.CompanyName != "Banco Azul" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Email == nil || *first.Email != "sales@example.com" {
		t.Fatalf("expected validated email, got %v", first.Email)
	}
	if first.Phone == nil || *first.Phone != "+5511987654321" {
		t.Fatalf("expected normalized phone, got %v", first.Phone)
	}
	if first.Website == nil || *first.Website != "https://bancoazul.example.com" {
		t.Fatalf("expected sanitized website, got %v", first.Website)
	}
	if first.Sector == nil || *first.Sector != entity.SectorBanking {
		t.Fatalf("expected banking sector, got %v", first.Sector)
	}

	second := repo.bulkRecords[1]
	if second.Phone != nil {
		t.Fatalf("expected invalid phone dropped, got %v", *second.Phone)
	}
	if second.Sector == nil || *second.Sector != entity.SectorRetail {
		t.Fatalf("expected retail sector, got %v", second.Sector)
	}
}

func TestImportLeadsCSV_MissingRequiredColumn(t *testing.T) {
	service := NewLeadsService(&capturingLeadsRepo{}, nil, testValidator(), scoring.DefaultWeights)

	_, err := service.ImportLeadsCSV(context.Background(), strings.NewReader("website,email\nfoo,bar"))
	var valErr CSVValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected CSVValidationError, got %v", err)
	}
	if !strings.Contains(valErr.Message, "company_name") {
		t.Fatalf("expected missing column named, got %q", valErr.Message)
	}
}

func TestImportLeadsCSV_InvalidCompanySize(t *testing.T) {
	csvData := "company_name,company_size\nAcme,gigantic"
	service := NewLeadsService(&capturingLeadsRepo{}, nil, testValidator(), scoring.DefaultWeights)

	_, err := service.ImportLeadsCSV(context.Background(), strings.NewReader(csvData))
	var valErr CSVValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected CSVValidationError, got %v", err)
	}
}

func TestImportLeadsCSV_Empty(t *testing.T) {
	service := NewLeadsService(&capturingLeadsRepo{}, nil, testValidator(), scoring.DefaultWeights)

	_, err := service.ImportLeadsCSV(context.Background(), strings.NewReader(""))
	var valErr CSVValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected CSVValidationError for empty file, got %v", err)
	}
}

func TestQualify_BatchIsTotal(t *testing.T) {
	sector := entity.SectorBanking
	size := entity.SizeEnterprise
	repo := &capturingLeadsRepo{
		candidates: []entity.Lead{
			{ID: uuid.New(), CompanyName: "Banco Azul", Sector: &sector, CompanySize: &size},
			{ID: uuid.New(), CompanyName: ""}, // unscorable
		},
	}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	response, err := service.Qualify(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Scored != 1 || response.Failed != 1 {
		t.Fatalf("expected 1 scored 1 failed, got %+v", response)
	}
	if len(response.Failures) != 1 {
		t.Fatalf("expected failure detail, got %+v", response.Failures)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected only the scored lead persisted, got %d", len(repo.upserted))
	}
	if repo.upserted[0].Score == 0 {
		t.Fatalf("expected persisted lead scored")
	}
}

func TestQualify_ByIDSkipsMissing(t *testing.T) {
	sector := entity.SectorTechnology
	known := uuid.New()
	repo := &capturingLeadsRepo{byID: map[uuid.UUID]*entity.Lead{
		known: {ID: known, CompanyName: "TechCo", Sector: &sector},
	}}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	response, err := service.Qualify(context.Background(), []uuid.UUID{known, uuid.New()}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Scored != 1 || response.Failed != 0 {
		t.Fatalf("expected missing id skipped silently, got %+v", response)
	}
}

func TestExportLeadsCSV_RoundTrip(t *testing.T) {
	sector := entity.SectorMining
	size := entity.SizeLarge
	maturity := entity.MaturityAdopting
	website := "https://minera.example"
	repo := &capturingLeadsRepo{listResult: []entity.Lead{{
		ID:              uuid.New(),
		CompanyName:     "Minera Andina",
		Sector:          &sector,
		CompanySize:     &size,
		Website:         &website,
		CloudMaturity:   &maturity,
		UsesTargetCloud: false,
		Technologies:    []string{"azure", "react"},
		PainPoints:      []string{"scalability"},
		Score:           72.25,
	}}}
	service := NewLeadsService(repo, nil, testValidator(), scoring.DefaultWeights)

	var buf bytes.Buffer
	count, err := service.ExportLeadsCSV(context.Background(), dto.LeadFilter{}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one exported lead, got %d", count)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("exported csv must parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + row, got %d", len(rows))
	}

	header, row := rows[0], rows[1]
	byName := map[string]string{}
	for i, col := range header {
		byName[col] = row[i]
	}
	if byName["company_name"] != "Minera Andina" {
		t.Fatalf("unexpected company: %q", byName["company_name"])
	}
	if byName["score"] != "72.25" {
		t.Fatalf("expected two-decimal score, got %q", byName["score"])
	}
	if byName["priority"] != "WARM" {
		t.Fatalf("expected derived priority, got %q", byName["priority"])
	}
	if byName["technologies"] != "azure;react" {
		t.Fatalf("unexpected technologies: %q", byName["technologies"])
	}
}
