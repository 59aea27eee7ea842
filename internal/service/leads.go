package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
	"github.com/octobees/lead-qualifier/internal/repository"
	"github.com/octobees/lead-qualifier/internal/service/scoring"
	"github.com/octobees/lead-qualifier/internal/service/technographics"
)

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// LeadsService orchestrates the qualification pipeline: import, enrich,
// score, list, export.
type LeadsService struct {
	repo      repository.LeadsRepository
	enricher  *technographics.Enricher
	validator *ContactValidator
	weights   scoring.Weights
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository, enricher *technographics.Enricher, validator *ContactValidator, weights scoring.Weights) *LeadsService {
	if validator == nil {
		validator = NewContactValidator("")
	}
	return &LeadsService{repo: repo, enricher: enricher, validator: validator, weights: weights}
}

// ListLeads returns leads respecting pagination defaults.
func (s *LeadsService) ListLeads(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	return s.repo.List(ctx, filter)
}

// GetLead fetches a single lead.
func (s *LeadsService) GetLead(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertLead validates, scores and persists a lead.
func (s *LeadsService) UpsertLead(ctx context.Context, lead *entity.Lead) error {
	if lead == nil || strings.TrimSpace(lead.CompanyName) == "" {
		return fmt.Errorf("company name is required")
	}

	if lead.Email != nil {
		if cleaned := s.validator.CleanEmail(ctx, *lead.Email); cleaned != "" {
			lead.Email = &cleaned
		} else {
			lead.Email = nil
		}
	}
	if lead.Phone != nil {
		if normalized := s.validator.NormalizePhone(*lead.Phone); normalized != "" {
			lead.Phone = &normalized
		} else {
			lead.Phone = nil
		}
	}
	if lead.Website != nil {
		if sanitized := s.validator.SanitizeWebsite(*lead.Website); sanitized != "" {
			lead.Website = &sanitized
		} else {
			lead.Website = nil
		}
	}

	if err := scoring.ScoreLead(lead, s.weights); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, lead)
}

// Qualify runs the enrich-and-score pipeline over the given leads. An empty
// id list qualifies every stored lead. The batch is total: per-lead
// failures are reported, never aborting the run.
func (s *LeadsService) Qualify(ctx context.Context, ids []uuid.UUID, enrich bool) (dto.QualifyResponse, error) {
	var response dto.QualifyResponse

	leads, err := s.loadForQualify(ctx, ids)
	if err != nil {
		return response, err
	}

	for i := range leads {
		lead := &leads[i]

		if enrich && s.enricher != nil {
			s.enricher.EnrichLead(ctx, lead)
		}

		if err := scoring.ScoreLead(lead, s.weights); err != nil {
			response.Failed++
			response.Failures = append(response.Failures, dto.QualifyError{
				LeadID:      lead.ID,
				CompanyName: lead.CompanyName,
				Reason:      err.Error(),
			})
			continue
		}

		if err := s.repo.Upsert(ctx, lead); err != nil {
			response.Failed++
			response.Failures = append(response.Failures, dto.QualifyError{
				LeadID:      lead.ID,
				CompanyName: lead.CompanyName,
				Reason:      err.Error(),
			})
			continue
		}
		response.Scored++
	}

	log.Printf("qualify run scored=%d failed=%d enrich=%v", response.Scored, response.Failed, enrich)
	return response, nil
}

func (s *LeadsService) loadForQualify(ctx context.Context, ids []uuid.UUID) ([]entity.Lead, error) {
	return s.LoadLeads(ctx, ids, 0)
}

// LoadLeads resolves an explicit id set, or every stored lead at or above
// minScore when ids is empty. Unknown ids are skipped.
func (s *LeadsService) LoadLeads(ctx context.Context, ids []uuid.UUID, minScore float64) ([]entity.Lead, error) {
	if len(ids) == 0 {
		leads, err := s.repo.Candidates(ctx, minScore)
		if err != nil {
			return nil, fmt.Errorf("load leads: %w", err)
		}
		return leads, nil
	}

	leads := make([]entity.Lead, 0, len(ids))
	for _, id := range ids {
		lead, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrLeadNotFound) {
				continue
			}
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, nil
}

var requiredCSVHeaders = []string{"company_name"}

// ImportLeadsCSV ingests lead data from a CSV reader. Only company_name is
// mandatory; the optional columns (tax_id, website, email, phone, address,
// city, region, sector, company_size, source) are picked up when present.
// Contact fields are normalized through the validator and dropped when
// invalid rather than failing the row.
func (s *LeadsService) ImportLeadsCSV(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return dto.ImportSummary{}, valErr
	}

	var (
		records []repository.BulkUpsertLeadInput
		skipped int
		rowNum  = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportSummary{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		companyName := strings.TrimSpace(row[indexMap["company_name"]])
		if companyName == "" {
			skipped++
			continue
		}

		record := repository.BulkUpsertLeadInput{CompanyName: companyName}
		record.TaxID = optionalColumn(row, indexMap, "tax_id")
		record.Address = optionalColumn(row, indexMap, "address")
		record.City = optionalColumn(row, indexMap, "city")
		record.Region = optionalColumn(row, indexMap, "region")
		record.Source = optionalColumn(row, indexMap, "source")

		if raw := optionalColumn(row, indexMap, "email"); raw != nil {
			if cleaned := s.validator.CleanEmail(ctx, *raw); cleaned != "" {
				record.Email = &cleaned
			}
		}
		if raw := optionalColumn(row, indexMap, "phone"); raw != nil {
			if normalized := s.validator.NormalizePhone(*raw); normalized != "" {
				record.Phone = &normalized
			}
		}
		if raw := optionalColumn(row, indexMap, "website"); raw != nil {
			if sanitized := s.validator.SanitizeWebsite(*raw); sanitized != "" {
				record.Website = &sanitized
			}
		}
		if raw := optionalColumn(row, indexMap, "sector"); raw != nil {
			sector := entity.ParseSector(strings.ToLower(*raw))
			record.Sector = &sector
		}
		if raw := optionalColumn(row, indexMap, "company_size"); raw != nil {
			size := strings.ToLower(*raw)
			if !entity.ValidSize(size) {
				return dto.ImportSummary{}, CSVValidationError{
					Message: fmt.Sprintf("invalid company_size value on row %d", rowNum),
				}
			}
			companySize := entity.CompanySize(size)
			record.CompanySize = &companySize
		}

		records = append(records, record)
	}

	result, err := s.repo.BulkUpsert(ctx, records)
	if err != nil {
		return dto.ImportSummary{}, err
	}

	return dto.ImportSummary{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Total:    result.Total,
		Skipped:  skipped,
	}, nil
}

var exportCSVHeader = []string{
	"company_name", "sector", "company_size", "website", "email", "phone",
	"city", "cloud_maturity", "uses_target_cloud", "competitor_cloud",
	"technologies", "pain_points", "score", "priority",
}

// ExportLeadsCSV streams leads matching the filter as CSV, best score
// first. Priority is derived from the score at write time.
func (s *LeadsService) ExportLeadsCSV(ctx context.Context, filter dto.LeadFilter, w io.Writer) (int, error) {
	if filter.PerPage <= 0 {
		filter.PerPage = 100
	}
	leads, err := s.ListLeads(ctx, filter)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportCSVHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	for i := range leads {
		lead := &leads[i]
		row := []string{
			lead.CompanyName,
			derefSector(lead.Sector),
			derefSize(lead.CompanySize),
			deref(lead.Website),
			deref(lead.Email),
			deref(lead.Phone),
			deref(lead.City),
			derefMaturity(lead.CloudMaturity),
			strconv.FormatBool(lead.UsesTargetCloud),
			deref(lead.CompetitorCloud),
			strings.Join(lead.Technologies, ";"),
			strings.Join(lead.PainPoints, ";"),
			strconv.FormatFloat(lead.Score, 'f', 2, 64),
			string(lead.Priority()),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(leads), nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func optionalColumn(row []string, index map[string]int, name string) *string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return nil
	}
	value := strings.TrimSpace(row[i])
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefSector(value *entity.Sector) string {
	if value == nil {
		return ""
	}
	return string(*value)
}

func derefSize(value *entity.CompanySize) string {
	if value == nil {
		return ""
	}
	return string(*value)
}

func derefMaturity(value *entity.CloudMaturity) string {
	if value == nil {
		return ""
	}
	return string(*value)
}
