package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"veriscreen/internal/screening/engine"
	"veriscreen/internal/screening/models"
	"veriscreen/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// PostgresStore persists evaluations in the evaluations table. The applicant
// and the full match payloads are stored as JSONB so a past evaluation can be
// replayed exactly as it was returned.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, evaluation *models.Evaluation) error {
	applicant, err := json.Marshal(evaluation.Applicant)
	if err != nil {
		return fmt.Errorf("marshal applicant: %w", err)
	}
	matches, err := json.Marshal(evaluation.Matches)
	if err != nil {
		return fmt.Errorf("marshal matches: %w", err)
	}
	counts, err := json.Marshal(evaluation.MatchCounts)
	if err != nil {
		return fmt.Errorf("marshal match counts: %w", err)
	}

	query := `
		INSERT INTO evaluations (id, client_id, request_id, applicant, matches, match_counts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.pool.Exec(ctx, query,
		evaluation.ID,
		evaluation.ClientID,
		evaluation.RequestID,
		applicant,
		matches,
		counts,
		evaluation.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Evaluation, error) {
	query := `
		SELECT id, client_id, request_id, applicant, matches, match_counts, created_at
		FROM evaluations
		WHERE id = $1
	`
	evaluation, err := scanEvaluation(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query evaluation: %w", err)
	}
	return evaluation, nil
}

// ListRecent returns up to limit evaluations, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]*models.Evaluation, error) {
	query := `
		SELECT id, client_id, request_id, applicant, matches, match_counts, created_at
		FROM evaluations
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []*models.Evaluation
	for rows.Next() {
		evaluation, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, evaluation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return count, nil
}

func scanEvaluation(row pgx.Row) (*models.Evaluation, error) {
	var (
		e         models.Evaluation
		applicant []byte
		matches   []byte
		counts    []byte
	)
	if err := row.Scan(&e.ID, &e.ClientID, &e.RequestID, &applicant, &matches, &counts, &e.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(applicant, &e.Applicant); err != nil {
		return nil, fmt.Errorf("unmarshal applicant: %w", err)
	}
	if err := json.Unmarshal(matches, &e.Matches); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	if err := json.Unmarshal(counts, &e.MatchCounts); err != nil {
		return nil, fmt.Errorf("unmarshal match counts: %w", err)
	}
	if e.Matches == nil {
		e.Matches = []engine.EvaluatedMatch{}
	}
	return &e, nil
}
