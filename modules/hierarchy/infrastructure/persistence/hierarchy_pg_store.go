package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
)

type pgBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type HierarchyPGStore struct {
	pool pgBeginner
}

func NewHierarchyPGStore(pool pgBeginner) ports.HierarchyStore {
	return &HierarchyPGStore{pool: pool}
}

const pgUniqueViolation = "23505"

var ErrDuplicateEmployee = errors.New("employee already stored")

func (s *HierarchyPGStore) Save(ctx context.Context, root *types.Employee) error {
	rows := flattenRows(root)
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return types.NewStoreError("save", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
INSERT INTO employees (name, supervisor_name)
VALUES ($1::text, $2::text)
`, r.name, r.supervisorValue())
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return types.NewStoreError("save", pgSaveError(err))
		}
	}
	if err := br.Close(); err != nil {
		return types.NewStoreError("save", pgSaveError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewStoreError("save", err)
	}
	return nil
}

func pgSaveError(err error) error {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok && pgErr != nil && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateEmployee, pgErr.Detail)
	}
	return err
}

// Snapshot runs fn inside one REPEATABLE READ, READ ONLY transaction so all
// point queries of a reconstruction see the same rows.
func (s *HierarchyPGStore) Snapshot(ctx context.Context, fn func(ports.FlatReader) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return types.NewStoreError("snapshot", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(pgFlatReader{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewStoreError("snapshot", err)
	}
	return nil
}

type pgFlatReader struct {
	tx pgx.Tx
}

func (r pgFlatReader) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.tx.QueryRow(ctx, `
SELECT EXISTS (SELECT 1 FROM employees WHERE name = $1::text)
`, name).Scan(&exists); err != nil {
		return false, types.NewStoreError("exists", err)
	}
	return exists, nil
}

func (r pgFlatReader) ParentOf(ctx context.Context, name string) (string, bool, error) {
	var supervisor *string
	if err := r.tx.QueryRow(ctx, `
SELECT supervisor_name
FROM employees
WHERE name = $1::text
`, name).Scan(&supervisor); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, types.NewStoreError("parent_of", err)
	}
	if supervisor == nil {
		return "", false, nil
	}
	return *supervisor, true, nil
}

func (r pgFlatReader) ChildrenOf(ctx context.Context, name string) ([]string, error) {
	rows, err := r.tx.Query(ctx, `
SELECT name
FROM employees
WHERE supervisor_name = $1::text
ORDER BY id ASC
`, name)
	if err != nil {
		return nil, types.NewStoreError("children_of", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var child string
		if err := rows.Scan(&child); err != nil {
			return nil, types.NewStoreError("children_of", err)
		}
		out = append(out, child)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStoreError("children_of", err)
	}
	return out, nil
}
