package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the concrete types below carry the message.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")

	ErrAlreadyExists = errors.New("already exists")
	ErrNameCollision = errors.New("name collision")
	ErrInvalidMove   = errors.New("cannot move into an inner folder")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// EmptyName is returned when a path or name is blank after trimming.
func EmptyName(field string) error {
	return &ValidationError{Field: field, Message: "name cannot be empty"}
}

// ConflictError rejects an operation after a read check found a colliding or illegal target.
type ConflictError struct {
	Kind    error
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == e.Kind
}

// AlreadyExists reports that a node of the given kind ("file" or "folder") is already at path.
func AlreadyExists(kind, path string) error {
	return &ConflictError{Kind: ErrAlreadyExists, Message: fmt.Sprintf("%s already exists: %s", kind, path)}
}

// NameCollision reports that a move would land on an existing node.
func NameCollision(kind, path string) error {
	return &ConflictError{Kind: ErrNameCollision, Message: fmt.Sprintf("another %s with the same name exists: %s", kind, path)}
}

// InvalidMove reports an attempt to move a folder into itself or a descendant.
func InvalidMove() error {
	return &ConflictError{Kind: ErrInvalidMove, Message: ErrInvalidMove.Error()}
}

// NotFoundError is returned for operations on ids that do not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// PersistenceError wraps a failure reported by the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Persistence wraps err unless it already belongs to the domain taxonomy.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomain reports whether err already carries one of the kinds above.
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPersistence)
}
