package types

import (
	"errors"
	"strings"
)

type InvalidEntryKind string

const (
	InvalidEntrySelfReference         InvalidEntryKind = "self_reference"
	InvalidEntryCycle                 InvalidEntryKind = "cycle"
	InvalidEntryMultipleRoots         InvalidEntryKind = "multiple_roots"
	InvalidEntryConflictingSupervisor InvalidEntryKind = "conflicting_supervisor"
)

// InvalidEntryError rejects a hierarchy. Entry carries the offending
// "subordinate:supervisor" pair or the joined root names.
type InvalidEntryError struct {
	Kind    InvalidEntryKind
	Message string
	Entry   string
}

func (e *InvalidEntryError) Error() string {
	return e.Message + " (" + e.Entry + ")"
}

func SelfReferenceError(name string) error {
	return &InvalidEntryError{
		Kind:    InvalidEntrySelfReference,
		Message: "Supervisor and subordinate names cannot be the same.",
		Entry:   Edge{Subordinate: name, Supervisor: name}.Entry(),
	}
}

func CycleError(subordinate string, supervisor string) error {
	return &InvalidEntryError{
		Kind:    InvalidEntryCycle,
		Message: "Loop condition found.",
		Entry:   Edge{Subordinate: subordinate, Supervisor: supervisor}.Entry(),
	}
}

func MultipleRootsError(roots []string) error {
	return &InvalidEntryError{
		Kind:    InvalidEntryMultipleRoots,
		Message: "Found multiple roots.",
		Entry:   strings.Join(roots, ","),
	}
}

func ConflictingSupervisorError(subordinate string, supervisor string) error {
	return &InvalidEntryError{
		Kind:    InvalidEntryConflictingSupervisor,
		Message: "Subordinate already has a different supervisor.",
		Entry:   Edge{Subordinate: subordinate, Supervisor: supervisor}.Entry(),
	}
}

func IsInvalidEntry(err error) bool {
	_, ok := errors.AsType[*InvalidEntryError](err)
	return ok
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return "employee not found: " + e.Name }

func IsNotFound(err error) bool {
	_, ok := errors.AsType[*NotFoundError](err)
	return ok
}

// StoreError wraps a flat store failure that is not otherwise classified.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return "store " + e.Op + " failed"
	}
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsStoreError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsStoreError(err error) bool {
	_, ok := errors.AsType[*StoreError](err)
	return ok
}
