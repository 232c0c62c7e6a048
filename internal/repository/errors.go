package repository

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// NotFoundError reports a primary or unique key lookup that matched nothing.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s with identifier %s not found", e.Entity, e.Key)
}

// UniqueConstraintError reports an insert or update colliding with an
// existing unique value. Field is empty when the driver did not say which.
type UniqueConstraintError struct {
	Entity string
	Field  string
}

func (e *UniqueConstraintError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s unique constraint violated", e.Entity)
	}
	return fmt.Sprintf("%s unique constraint violated on field: %s", e.Entity, e.Field)
}

// StorageError wraps any other database failure with the entity and action
// that triggered it.
type StorageError struct {
	Entity string
	Action string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("error %s %s: %v", e.Action, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewNotFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUniqueConstraint(err error) bool {
	var uc *UniqueConstraintError
	return errors.As(err, &uc)
}

var pgDetailKey = regexp.MustCompile(`^Key \(([^)]+)\)=`)

// translateError maps gorm and pgx failures onto the repository error kinds.
// Errors that already carry a kind pass through untouched.
func translateError(entity, action, key string, err error) error {
	if err == nil {
		return nil
	}
	var (
		nf *NotFoundError
		uc *UniqueConstraintError
		se *StorageError
	)
	if errors.As(err, &nf) || errors.As(err, &uc) || errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, Key: key}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		field := pgErr.ColumnName
		if m := pgDetailKey.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
		return &UniqueConstraintError{Entity: entity, Field: field}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &UniqueConstraintError{Entity: entity}
	}
	return &StorageError{Entity: entity, Action: action, Err: err}
}
