package progress

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/career-guide/internal/assessment"
)

const dbTimeout = 5 * time.Second

//go:embed schema.sql
var schemaSQL string

// PostgresStore is a PostgreSQL-backed SeenStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed seen store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the seen_questions table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate seen_questions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Seen(ctx context.Context, userID string, stream assessment.Stream) (assessment.SeenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT question_id
		 FROM seen_questions
		 WHERE user_id = $1 AND stream = $2`,
		userID,
		string(stream),
	)
	if err != nil {
		return nil, fmt.Errorf("query seen questions: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan seen questions: %w", err)
	}
	return assessment.NewSeenSet(ids...), nil
}

func (s *PostgresStore) MarkSeen(ctx context.Context, userID string, stream assessment.Stream, questionIDs []string) error {
	if len(questionIDs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO seen_questions (user_id, stream, question_id)
		 SELECT $1, $2, unnest($3::text[])
		 ON CONFLICT DO NOTHING`,
		userID,
		string(stream),
		questionIDs,
	)
	if err != nil {
		return fmt.Errorf("insert seen questions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context, userID string, stream assessment.Stream) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM seen_questions WHERE user_id = $1 AND stream = $2`,
		userID,
		string(stream),
	); err != nil {
		return fmt.Errorf("reset seen questions: %w", err)
	}
	return nil
}
