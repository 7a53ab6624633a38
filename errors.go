package tabgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tabgo/internal/header"
	"github.com/hupe1980/tabgo/model"
	"github.com/hupe1980/tabgo/pk"
	"github.com/hupe1980/tabgo/resource"
	"github.com/hupe1980/tabgo/tag"
	"github.com/hupe1980/tabgo/value"
)

var (
	// ErrInvalidName is returned for labels and tags that are empty, start
	// with '-' or parse as a number.
	ErrInvalidName = model.ErrInvalidName

	// ErrCapacity is returned when rows or columns cannot be allocated.
	// Nothing has changed when it is returned.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrStaleHandle is returned for handles of deleted rows or columns.
	ErrStaleHandle = header.ErrStale

	// ErrRange is returned for out-of-range indices and moves.
	ErrRange = header.ErrRange

	// ErrNotFound is returned when a label or key has no match.
	ErrNotFound = errors.New("not found")

	// ErrUnknownTag is returned for tags that were never declared.
	ErrUnknownTag = tag.ErrUnknown

	// ErrClosed is returned by every operation on a closed View.
	ErrClosed = errors.New("view is closed")

	// ErrOtherTable is returned when two views of different tables are
	// combined.
	ErrOtherTable = errors.New("views belong to different tables")

	// ErrNoKeys is returned by LookupKey before SetKeys.
	ErrNoKeys = pk.ErrNoKeys

	// ErrDuplicateKey is wrapped by KeyError.
	ErrDuplicateKey = pk.ErrDuplicateKey
)

// KeyError reports two rows sharing a unique key.
type KeyError = pk.DuplicateKeyError

// ArityError reports a key lookup with the wrong number of values.
type ArityError = pk.ArityError

// ConversionError reports a value that does not fit a column type.
//
// The underlying parse error can be accessed via errors.Unwrap; it wraps
// value.ErrSyntax.
type ConversionError struct {
	Row    model.Handle
	Column model.Handle
	Type   value.Type
	Text   string
	cause  error
}

func (e *ConversionError) Error() string {
	if e.Row.IsZero() {
		return fmt.Sprintf("column %s: expected %s value but got %q", e.Column, e.Type, e.Text)
	}
	return fmt.Sprintf("cell %s,%s: expected %s value but got %q", e.Row, e.Column, e.Type, e.Text)
}

func (e *ConversionError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Capacity unification.
	if errors.Is(err, header.ErrCapacity) || errors.Is(err, resource.ErrMemoryLimit) {
		return fmt.Errorf("%w: %w", ErrCapacity, err)
	}

	// Not found unification.
	if errors.Is(err, pk.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
