package persistence

import (
	"errors"
	"strings"

	"github.com/shopfront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps driver errors onto domain errors. resource names the
// entity in not-found messages.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.NewConflictError("%s already exists", resource)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return shared.NewDomainError(shared.CodeConflict, resource+" is referenced by other records")
	}
	return err
}

// isUniqueViolation catches unique errors from connections opened without
// TranslateError, e.g. raw lib/pq errors
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// paginate applies page and size, defaulting to the first page of 20
func paginate(q *gorm.DB, page, size int) *gorm.DB {
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	return q.Offset((page - 1) * size).Limit(size)
}

// likeEscape goes after every LIKE built from likePattern
const likeEscape = ` ESCAPE '\'`

// likePattern builds a case-insensitive contains pattern for LOWER(col) LIKE ?
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}
