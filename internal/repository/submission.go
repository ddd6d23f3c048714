package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bessima/botform-intake/internal/config/db"
	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/Bessima/botform-intake/internal/retry"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const submissionColumns = `id, reference_code, requester_name, requester_email,
	equity_indices, other_equity, forex, other_forex, commodities, other_commodities,
	custom_indicators, premium_access, other_access, special_instructions, status, created_at`

type SubmissionRepository struct {
	db *db.DB
}

type SubmissionStorageRepositoryI interface {
	Create(ctx context.Context, submission models.NewSubmission) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	GetByReferenceCode(ctx context.Context, code string) (*models.Submission, error)
	GetAll(ctx context.Context) ([]models.Submission, error)
	GetListByEmail(ctx context.Context, email string) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id int64, status models.SubmissionStatus) (*models.Submission, error)
}

func NewSubmissionRepository(dbObj *db.DB) *SubmissionRepository {
	return &SubmissionRepository{db: dbObj}
}

func (repository *SubmissionRepository) Create(ctx context.Context, submission models.NewSubmission) (*models.Submission, error) {
	if submission.ReferenceCode == "" {
		return nil, errors.New("reference code must be generated before insert")
	}

	equity, forex, commodities, err := marshalLists(submission)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO bot_submissions (reference_code, requester_name, requester_email,
		equity_indices, other_equity, forex, other_forex, commodities, other_commodities,
		custom_indicators, premium_access, other_access, special_instructions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + submissionColumns

	created, err := retry.DoRetryWithResult(ctx, func() (*models.Submission, error) {
		row := repository.db.Pool.QueryRow(ctx, query,
			submission.ReferenceCode,
			submission.RequesterName,
			submission.RequesterEmail,
			equity,
			submission.OtherEquity,
			forex,
			submission.OtherForex,
			commodities,
			submission.OtherCommodities,
			submission.CustomIndicators,
			submission.PremiumAccess,
			submission.OtherAccess,
			submission.SpecialInstructions,
			submission.Status,
		)
		return scanSubmission(row)
	}, repository.db.Retry)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			errWithMessage := fmt.Sprintf("submission with reference code %s already exists", submission.ReferenceCode)
			return nil, customerror.NewUniqueViolationError(errWithMessage)
		}
		return nil, customerror.NewCommonPGError(err.Error())
	}
	return created, nil
}

func (repository *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM bot_submissions WHERE id = $1`
	return repository.getOne(ctx, fmt.Sprintf("submission %d not found", id), query, id)
}

func (repository *SubmissionRepository) GetByReferenceCode(ctx context.Context, code string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM bot_submissions WHERE reference_code = $1`
	return repository.getOne(ctx, fmt.Sprintf("submission %s not found", code), query, code)
}

func (repository *SubmissionRepository) GetAll(ctx context.Context) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM bot_submissions ORDER BY created_at, id`
	return repository.getList(ctx, query)
}

func (repository *SubmissionRepository) GetListByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM bot_submissions WHERE requester_email = $1 ORDER BY created_at, id`
	return repository.getList(ctx, query, email)
}

// UpdateStatus перезаписывает только статус; повторная установка того же
// статуса допустима.
func (repository *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status models.SubmissionStatus) (*models.Submission, error) {
	query := `UPDATE bot_submissions SET status = $1 WHERE id = $2 RETURNING ` + submissionColumns
	return repository.getOne(ctx, fmt.Sprintf("submission %d not found", id), query, status, id)
}

func (repository *SubmissionRepository) getOne(ctx context.Context, notFound, query string, args ...any) (*models.Submission, error) {
	submission, err := retry.DoRetryWithResult(ctx, func() (*models.Submission, error) {
		return scanSubmission(repository.db.Pool.QueryRow(ctx, query, args...))
	}, repository.db.Retry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customerror.NewNotFoundError(notFound)
		}
		return nil, customerror.NewCommonPGError(err.Error())
	}
	return submission, nil
}

func (repository *SubmissionRepository) getList(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	submissions, err := retry.DoRetryWithResult(ctx, func() ([]models.Submission, error) {
		rows, err := repository.db.Pool.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		submissions := []models.Submission{}
		for rows.Next() {
			submission, err := scanSubmission(rows)
			if err != nil {
				return nil, err
			}
			submissions = append(submissions, *submission)
		}

		return submissions, rows.Err()
	}, repository.db.Retry)
	if err != nil {
		return nil, customerror.NewCommonPGError(err.Error())
	}
	return submissions, nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	elem := models.Submission{}
	var equity, forex, commodities []byte

	err := row.Scan(
		&elem.ID,
		&elem.ReferenceCode,
		&elem.RequesterName,
		&elem.RequesterEmail,
		&equity,
		&elem.OtherEquity,
		&forex,
		&elem.OtherForex,
		&commodities,
		&elem.OtherCommodities,
		&elem.CustomIndicators,
		&elem.PremiumAccess,
		&elem.OtherAccess,
		&elem.SpecialInstructions,
		&elem.Status,
		&elem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if elem.EquityIndices, err = unmarshalList(equity); err != nil {
		return nil, fmt.Errorf("equity_indices: %w", err)
	}
	if elem.Forex, err = unmarshalList(forex); err != nil {
		return nil, fmt.Errorf("forex: %w", err)
	}
	if elem.Commodities, err = unmarshalList(commodities); err != nil {
		return nil, fmt.Errorf("commodities: %w", err)
	}
	return &elem, nil
}

func marshalLists(submission models.NewSubmission) (equity, forex, commodities []byte, err error) {
	if equity, err = marshalList(submission.EquityIndices); err != nil {
		return nil, nil, nil, err
	}
	if forex, err = marshalList(submission.Forex); err != nil {
		return nil, nil, nil, err
	}
	if commodities, err = marshalList(submission.Commodities); err != nil {
		return nil, nil, nil, err
	}
	return equity, forex, commodities, nil
}

func marshalList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalList(data []byte) ([]string, error) {
	values := []string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
