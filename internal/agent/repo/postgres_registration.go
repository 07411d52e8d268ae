package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/officeflow-core-poc/server/internal/agent/model"
	errx "github.com/officeflow-core-poc/server/internal/core/error"
	logx "github.com/officeflow-core-poc/server/pkg/logger"
)

// PostgresRegistrationRepository persists business registrations to the
// business_registrations table. The erp_code column is assigned by the
// database (sequence default) and returned on insert.
type PostgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistrationRepository(pool *pgxpool.Pool) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{pool: pool}
}

var _ model.RegistrationRepository = (*PostgresRegistrationRepository)(nil)

const insertRegistrationSQL = `
	INSERT INTO business_registrations (
		client_name, business_name, representative_name,
		business_number, branch_number,
		postal_code, address1, address2,
		business_type, business_item,
		phone1, phone2, fax,
		contact_person1, mobile1, contact_person2, mobile2,
		client_type, price_grade,
		initial_balance, optimal_balance, memo,
		confidence, image_url
	) VALUES (
		$1, $2, $3,
		$4, $5,
		$6, $7, $8,
		$9, $10,
		$11, $12, $13,
		$14, $15, $16, $17,
		$18, $19,
		$20, $21, $22,
		$23, $24
	)
	RETURNING id, erp_code`

const findByBusinessNumberSQL = `
	SELECT id, erp_code, client_name, business_name, business_number, created_at
	FROM business_registrations
	WHERE business_number = $1`

func (r *PostgresRegistrationRepository) Insert(ctx context.Context, info *model.RegistrationInfo) (*model.RegistrationResult, error) {
	var result model.RegistrationResult
	err := r.pool.QueryRow(ctx, insertRegistrationSQL,
		info.ClientName, info.BusinessName, nullable(info.RepresentativeName),
		nullable(info.BusinessNumber), nullable(info.BranchNumber),
		nullable(info.PostalCode), nullable(info.Address1), nullable(info.Address2),
		nullable(info.BusinessType), nullable(info.BusinessItem),
		nullable(info.Phone1), nullable(info.Phone2), nullable(info.Fax),
		nullable(info.ContactPerson1), nullable(info.Mobile1), nullable(info.ContactPerson2), nullable(info.Mobile2),
		nullable(info.ClientType), nullable(info.PriceGrade),
		info.InitialBalance, info.OptimalBalance, nullable(info.Memo),
		info.Confidence, nullable(info.ImageURL),
	).Scan(&result.ID, &result.ERPCode)
	if err != nil {
		logx.Error().Err(err).Str("client_name", info.ClientName).Msg("failed to insert registration")
		return nil, errx.WrapPostgres(err)
	}

	logx.Info().
		Int64("id", result.ID).
		Int64("erp_code", result.ERPCode).
		Str("client_name", info.ClientName).
		Msg("business registration inserted")
	return &result, nil
}

func (r *PostgresRegistrationRepository) FindByBusinessNumber(ctx context.Context, number string) (*model.RegistrationRecord, error) {
	var rec model.RegistrationRecord
	err := r.pool.QueryRow(ctx, findByBusinessNumberSQL, number).Scan(
		&rec.ID, &rec.ERPCode, &rec.ClientName, &rec.BusinessName, &rec.BusinessNumber, &rec.CreatedAt,
	)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return &rec, nil
}

// nullable maps empty strings onto SQL NULL.
func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
