package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier - общий знаменатель pgxpool.Pool и pgx.Tx: методы репозиториев,
// которым нужно уметь работать и внутри транзакции, принимают его.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// orPool подставляет пул, когда вызов идет вне транзакции (q == nil).
func orPool(q Querier, pool *pgxpool.Pool) Querier {
	if q == nil {
		return pool
	}
	return q
}
