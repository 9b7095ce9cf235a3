package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/jsamuelsen/wellness-service/internal/domain"
)

// Postgres SQLSTATE codes for transactions that lost a race and may be retried.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// mapError converts gorm errors into domain errors. Anything unrecognised is
// wrapped with the operation name.
func mapError(err error, entity, id, operation string) error {
	var pgErr *pgconn.PgError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.NewConflictErrorWithDetails(entity, "already exists", id)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NewNotFoundError("post", "")
	case errors.As(err, &pgErr) && (pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected):
		return domain.NewConflictErrorWithDetails(entity, "concurrent update", id)
	default:
		return fmt.Errorf("%s %s: %w", operation, entity, err)
	}
}
