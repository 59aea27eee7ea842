package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-qualifier/internal/dto"
	"github.com/octobees/lead-qualifier/internal/entity"
)

// LeadsRepository describes persistence operations for leads.
type LeadsRepository interface {
	Upsert(ctx context.Context, lead *entity.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error)
	BulkUpsert(ctx context.Context, records []BulkUpsertLeadInput) (BulkUpsertResult, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, details map[string]float64) error
	Candidates(ctx context.Context, minScore float64) ([]entity.Lead, error)
}

// ErrLeadNotFound indicates there is no lead for the given id.
var ErrLeadNotFound = errors.New("lead not found")

// BulkUpsertLeadInput represents the minimal fields required for CSV ingestion.
type BulkUpsertLeadInput struct {
	CompanyName string
	TaxID       *string
	Website     *string
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	Region      *string
	Sector      *entity.Sector
	CompanySize *entity.CompanySize
	Source      *string
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const leadColumns = `
            id,
            company_name,
            tax_id,
            website,
            email,
            phone,
            address,
            city,
            region,
            sector,
            company_size,
            employee_count,
            annual_revenue,
            decision_makers,
            technologies,
            cloud_maturity,
            uses_target_cloud,
            competitor_cloud,
            pain_points,
            score,
            score_details,
            notes,
            source,
            extracted_at,
            updated_at
`

// Upsert inserts or updates a lead keyed by company name.
func (r *PGXLeadsRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	if lead == nil {
		return fmt.Errorf("lead payload is nil")
	}
	if strings.TrimSpace(lead.CompanyName) == "" {
		return fmt.Errorf("company name is required")
	}

	decisionMakers, err := json.Marshal(orEmptyDMs(lead.DecisionMakers))
	if err != nil {
		return fmt.Errorf("marshal decision makers: %w", err)
	}
	scoreDetails, err := json.Marshal(orEmptyScores(lead.ScoreDetails))
	if err != nil {
		return fmt.Errorf("marshal score details: %w", err)
	}

	query := `
        INSERT INTO leads (
            company_name, tax_id, website, email, phone, address, city, region,
            sector, company_size, employee_count, annual_revenue,
            decision_makers, technologies, cloud_maturity, uses_target_cloud,
            competitor_cloud, pain_points, score, score_details, notes, source,
            extracted_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
            $13::jsonb, $14, $15, $16, $17, $18, $19, $20::jsonb, $21, $22,
            COALESCE($23, NOW()), NOW()
        )
        ON CONFLICT (company_name) DO UPDATE SET
            tax_id = COALESCE(EXCLUDED.tax_id, leads.tax_id),
            website = COALESCE(EXCLUDED.website, leads.website),
            email = COALESCE(EXCLUDED.email, leads.email),
            phone = COALESCE(EXCLUDED.phone, leads.phone),
            address = COALESCE(EXCLUDED.address, leads.address),
            city = COALESCE(EXCLUDED.city, leads.city),
            region = COALESCE(EXCLUDED.region, leads.region),
            sector = COALESCE(EXCLUDED.sector, leads.sector),
            company_size = COALESCE(EXCLUDED.company_size, leads.company_size),
            employee_count = COALESCE(EXCLUDED.employee_count, leads.employee_count),
            annual_revenue = COALESCE(EXCLUDED.annual_revenue, leads.annual_revenue),
            decision_makers = EXCLUDED.decision_makers,
            technologies = EXCLUDED.technologies,
            cloud_maturity = COALESCE(EXCLUDED.cloud_maturity, leads.cloud_maturity),
            uses_target_cloud = EXCLUDED.uses_target_cloud,
            competitor_cloud = COALESCE(EXCLUDED.competitor_cloud, leads.competitor_cloud),
            pain_points = EXCLUDED.pain_points,
            score = EXCLUDED.score,
            score_details = EXCLUDED.score_details,
            notes = COALESCE(EXCLUDED.notes, leads.notes),
            source = COALESCE(EXCLUDED.source, leads.source),
            updated_at = NOW()
        RETURNING id;
    `

	var extractedAt any
	if !lead.ExtractedAt.IsZero() {
		extractedAt = lead.ExtractedAt
	}

	row := r.pool.QueryRow(ctx, query,
		lead.CompanyName,
		lead.TaxID,
		lead.Website,
		lead.Email,
		lead.Phone,
		lead.Address,
		lead.City,
		lead.Region,
		sectorOrNil(lead.Sector),
		sizeOrNil(lead.CompanySize),
		lead.EmployeeCount,
		lead.AnnualRevenue,
		string(decisionMakers),
		stringSliceOrEmpty(lead.Technologies),
		maturityOrNil(lead.CloudMaturity),
		lead.UsesTargetCloud,
		lead.CompetitorCloud,
		stringSliceOrEmpty(lead.PainPoints),
		lead.Score,
		string(scoreDetails),
		lead.Notes,
		lead.Source,
		extractedAt,
	)
	if err := row.Scan(&lead.ID); err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}

	return nil
}

// GetByID fetches a single lead.
func (r *PGXLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads WHERE id = $1"

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrLeadNotFound
	}
	return &leads[0], nil
}

// List retrieves leads matching the provided filter, sorted by score descending.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.LeadFilter) ([]entity.Lead, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString("SELECT " + leadColumns + " FROM leads")

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(company_name ILIKE $%d OR notes ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.Sector != "" {
		clauses = append(clauses, fmt.Sprintf("sector = $%d", idx))
		args = append(args, filter.Sector)
		idx++
	}
	if filter.CompanySize != "" {
		clauses = append(clauses, fmt.Sprintf("company_size = $%d", idx))
		args = append(args, filter.CompanySize)
		idx++
	}
	if filter.CloudMaturity != "" {
		clauses = append(clauses, fmt.Sprintf("cloud_maturity = $%d", idx))
		args = append(args, filter.CloudMaturity)
		idx++
	}
	if filter.MinScore != nil {
		clauses = append(clauses, fmt.Sprintf("score >= $%d", idx))
		args = append(args, *filter.MinScore)
		idx++
	}
	if filter.City != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(city) = LOWER($%d)", idx))
		args = append(args, filter.City)
		idx++
	}
	switch strings.ToLower(filter.WebsiteStatus) {
	case "missing":
		clauses = append(clauses, "website IS NULL")
	case "available":
		clauses = append(clauses, "website IS NOT NULL")
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}

	baseQuery.WriteString(" ORDER BY score DESC, updated_at DESC, company_name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

const bulkUpsertLeadSQL = `
        INSERT INTO leads (company_name, tax_id, website, email, phone, address, city, region, sector, company_size, source, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())
        ON CONFLICT (company_name) DO UPDATE SET
            tax_id = COALESCE(EXCLUDED.tax_id, leads.tax_id),
            website = COALESCE(EXCLUDED.website, leads.website),
            email = COALESCE(EXCLUDED.email, leads.email),
            phone = COALESCE(EXCLUDED.phone, leads.phone),
            address = COALESCE(EXCLUDED.address, leads.address),
            city = COALESCE(EXCLUDED.city, leads.city),
            region = COALESCE(EXCLUDED.region, leads.region),
            sector = COALESCE(EXCLUDED.sector, leads.sector),
            company_size = COALESCE(EXCLUDED.company_size, leads.company_size),
            source = COALESCE(EXCLUDED.source, leads.source),
            updated_at = NOW()
        RETURNING xmax = 0;
    `

// BulkUpsert persists a batch of imported leads with idempotent semantics.
func (r *PGXLeadsRepository) BulkUpsert(ctx context.Context, records []BulkUpsertLeadInput) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, record := range records {
		rows, err := tx.Query(ctx, bulkUpsertLeadSQL,
			record.CompanyName,
			record.TaxID,
			record.Website,
			record.Email,
			record.Phone,
			record.Address,
			record.City,
			record.Region,
			sectorOrNil(record.Sector),
			sizeOrNil(record.CompanySize),
			record.Source,
		)
		if err != nil {
			return result, fmt.Errorf("bulk upsert lead %q: %w", record.CompanyName, err)
		}

		var inserted bool
		if rows.Next() {
			if scanErr := rows.Scan(&inserted); scanErr != nil {
				rows.Close()
				return result, fmt.Errorf("scan bulk upsert result: %w", scanErr)
			}
		} else {
			err := rows.Err()
			rows.Close()
			if err != nil {
				return result, fmt.Errorf("bulk upsert lead %q: %w", record.CompanyName, err)
			}
			return result, fmt.Errorf("bulk upsert lead %q: no result returned", record.CompanyName)
		}
		rows.Close()

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}

	return result, nil
}

// Candidates returns all leads at or above the score floor, best first.
// Used as the selection pool for playlist refreshes and recommendations.
func (r *PGXLeadsRepository) Candidates(ctx context.Context, minScore float64) ([]entity.Lead, error) {
	query := "SELECT " + leadColumns + ` FROM leads
        WHERE score >= $1
        ORDER BY score DESC, updated_at DESC, company_name ASC`

	rows, err := r.pool.Query(ctx, query, minScore)
	if err != nil {
		return nil, fmt.Errorf("lead candidates: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// UpdateScore stores the computed score and its breakdown for an existing lead.
func (r *PGXLeadsRepository) UpdateScore(ctx context.Context, id uuid.UUID, score float64, details map[string]float64) error {
	payload, err := json.Marshal(orEmptyScores(details))
	if err != nil {
		return fmt.Errorf("marshal score details: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET score = $1, score_details = $2::jsonb, updated_at = NOW() WHERE id = $3`,
		score, string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("update lead score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func scanLeads(rows pgx.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		var (
			l              entity.Lead
			taxID          sql.NullString
			website        sql.NullString
			email          sql.NullString
			phone          sql.NullString
			address        sql.NullString
			city           sql.NullString
			region         sql.NullString
			sector         sql.NullString
			companySize    sql.NullString
			employeeCount  sql.NullInt64
			annualRevenue  sql.NullFloat64
			decisionMakers []byte
			technologies   []string
			cloudMaturity  sql.NullString
			competitor     sql.NullString
			painPoints     []string
			scoreDetails   []byte
			notes          sql.NullString
			source         sql.NullString
		)

		err := rows.Scan(
			&l.ID,
			&l.CompanyName,
			&taxID,
			&website,
			&email,
			&phone,
			&address,
			&city,
			&region,
			&sector,
			&companySize,
			&employeeCount,
			&annualRevenue,
			&decisionMakers,
			&technologies,
			&cloudMaturity,
			&l.UsesTargetCloud,
			&competitor,
			&painPoints,
			&l.Score,
			&scoreDetails,
			&notes,
			&source,
			&l.ExtractedAt,
			&l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}

		l.TaxID = nullStringToPtr(taxID)
		l.Website = nullStringToPtr(website)
		l.Email = nullStringToPtr(email)
		l.Phone = nullStringToPtr(phone)
		l.Address = nullStringToPtr(address)
		l.City = nullStringToPtr(city)
		l.Region = nullStringToPtr(region)
		l.Notes = nullStringToPtr(notes)
		l.Source = nullStringToPtr(source)
		l.CompetitorCloud = nullStringToPtr(competitor)

		if sector.Valid {
			s := entity.Sector(sector.String)
			l.Sector = &s
		}
		if companySize.Valid {
			s := entity.CompanySize(companySize.String)
			l.CompanySize = &s
		}
		if cloudMaturity.Valid {
			m := entity.CloudMaturity(cloudMaturity.String)
			l.CloudMaturity = &m
		}
		if employeeCount.Valid {
			count := int(employeeCount.Int64)
			l.EmployeeCount = &count
		}
		if annualRevenue.Valid {
			revenue := annualRevenue.Float64
			l.AnnualRevenue = &revenue
		}
		if len(technologies) > 0 {
			l.Technologies = append([]string(nil), technologies...)
		}
		if len(painPoints) > 0 {
			l.PainPoints = append([]string(nil), painPoints...)
		}
		if len(decisionMakers) > 0 {
			if err := json.Unmarshal(decisionMakers, &l.DecisionMakers); err != nil {
				return nil, fmt.Errorf("unmarshal decision makers: %w", err)
			}
		}
		if len(scoreDetails) > 0 {
			if err := json.Unmarshal(scoreDetails, &l.ScoreDetails); err != nil {
				return nil, fmt.Errorf("unmarshal score details: %w", err)
			}
		}

		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}

func stringSliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orEmptyDMs(values []entity.DecisionMaker) []entity.DecisionMaker {
	if values == nil {
		return []entity.DecisionMaker{}
	}
	return values
}

func orEmptyScores(values map[string]float64) map[string]float64 {
	if values == nil {
		return map[string]float64{}
	}
	return values
}

func sectorOrNil(value *entity.Sector) any {
	if value == nil {
		return nil
	}
	return string(*value)
}

func sizeOrNil(value *entity.CompanySize) any {
	if value == nil {
		return nil
	}
	return string(*value)
}

func maturityOrNil(value *entity.CloudMaturity) any {
	if value == nil {
		return nil
	}
	return string(*value)
}
