package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLExecutor абстрагирует *sql.DB и *sql.Tx, чтобы один и тот же метод
// репозитория мог выполняться как вне, так и внутри транзакции.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx добавляет к исполнителю управление границей транзакции.
type Tx interface {
	SQLExecutor
	Commit() error
	Rollback() error
}

// TxBeginner открывает транзакции. Сервисы зависят от него, а не от *sql.DB,
// чтобы транзакционные пути были проверяемы без реальной базы.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// SQLDatabase адаптирует *sql.DB к TxBeginner.
type SQLDatabase struct {
	db *sql.DB
}

func NewSQLDatabase(db *sql.DB) SQLDatabase {
	return SQLDatabase{db: db}
}

func (d SQLDatabase) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	return d.db.BeginTx(ctx, opts)
}

func checkRowsAffected(result sql.Result) (int64, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected, nil
}
