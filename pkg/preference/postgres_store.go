package preference

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the preference table in a Postgres table, for
// deployments that already run the rest of this stack's database rather
// than a bare CSV file. It satisfies the same atomic-whole-table-overwrite
// contract as FileStore: Save replaces every row inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore backed by pool. Callers are
// expected to have already run the migrations in migrations/ (see
// internal/platform.RunMigrations).
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc_date, doctor, status, reason FROM preferences ORDER BY doc_date, doctor`)
	if err != nil {
		// Per §4.2/§7: a load failure yields an empty record set, not an error.
		return nil, nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			date   time.Time
			doctor string
			status string
			reason string
		)
		if err := rows.Scan(&date, &doctor, &status, &reason); err != nil {
			return nil, nil
		}
		records = append(records, Record{
			Date:   date,
			Doctor: doctor,
			Status: Status(status),
			Reason: Reason(reason),
		})
	}
	if rows.Err() != nil {
		return nil, nil
	}
	return records, nil
}

func (s *PostgresStore) Save(ctx context.Context, records []Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("%w: clearing table: %v", ErrStoreUnavailable, err)
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{r.Date, r.Doctor, string(r.Status), string(r.Reason)}
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"preferences"},
			[]string{"doc_date", "doctor", "status", "reason"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("%w: bulk loading rows: %v", ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrStoreUnavailable, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
