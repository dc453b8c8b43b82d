package searchtree

import (
	"errors"
	"fmt"

	"github.com/hupe1980/searchtree/archive"
	"github.com/hupe1980/searchtree/model"
	"github.com/hupe1980/searchtree/parser"
	"github.com/hupe1980/searchtree/registry"
	"github.com/hupe1980/searchtree/resource"
	"github.com/hupe1980/searchtree/stream"
)

var (
	// ErrParse marks every failed parse. No partial response is returned.
	ErrParse = parser.ErrParse
	// ErrAlreadyRegistered is returned when a name is registered twice.
	ErrAlreadyRegistered = registry.ErrAlreadyRegistered
	// ErrNotFound is returned for unknown registrations and missing archived replies.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for rejected registrations and options.
	ErrInvalidArgument = registry.ErrInvalidArgument
	// ErrAllocationDenied is returned when arena memory cannot be granted.
	ErrAllocationDenied = model.ErrAllocationDenied
	// ErrUnsupportedEncoding is returned for an unknown content encoding.
	ErrUnsupportedEncoding = stream.ErrUnsupportedEncoding
)

// ParseError is the typed form of a fatal parse failure.
type ParseError = parser.ParseError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, registry.ErrNotFound) || errors.Is(err, archive.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	// Memory budget exhaustion outside an arena allocation.
	if errors.Is(err, resource.ErrMemoryLimitExceeded) && !errors.Is(err, ErrAllocationDenied) {
		return fmt.Errorf("%w: %w", ErrAllocationDenied, err)
	}

	return err
}
