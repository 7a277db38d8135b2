// Package repository реализует хранилище данных на основе PostgreSQL
// для участников, групп, тренировок, абонементов, пропусков и отработок.
// Операции, затрагивающие сразу несколько агрегатов (участник + тренировка),
// выполняются внутри сериализуемой транзакции с ограниченным числом повторов.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// txRetries — максимум попыток сериализуемой транзакции до возврата ErrTxConflict.
const txRetries = 3

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'members'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table members missing or query error: %w", err)
	}
	return nil
}

// withTx выполняет fn внутри сериализуемой транзакции.
// Конфликты сериализации и дедлоки повторяются до txRetries раз,
// после чего наружу уходит models.ErrTxConflict. Доменные ошибки
// (ErrSessionFull, ErrQuotaExceeded и т.п.) не повторяются.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	const op = "storage.withTx"

	var lastErr error
	for range txRetries {
		tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			// Ошибки fn уже обёрнуты вызывающей операцией
			if !isRetryableTxError(err) {
				return err
			}
			lastErr = err
			continue
		}

		if err := tx.Commit(); err != nil {
			if !isRetryableTxError(err) {
				return fmt.Errorf("%s: %w", op, err)
			}
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrTxConflict, lastErr)
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
