package collect

import (
	"context"
	"errors"
	"fmt"
)

// PageLimit is the largest page the remote source serves; larger requests are
// silently truncated by the remote.
const PageLimit = 50

// EffectivePageSize returns the page size actually used for a requested size.
func EffectivePageSize(requested int) int {
	if requested <= 0 || requested > PageLimit {
		return PageLimit
	}
	return requested
}

// PageRequest asks a remote for one page of an entity.
type PageRequest struct {
	// Number is the zero-based page index within the run.
	Number int
	// Size is the number of records requested, never above PageLimit.
	Size int
	// Offset is the number of records already consumed.
	Offset int
	// Filter holds opaque query constraints passed through to the remote.
	Filter map[string]string
}

// Page is one page of raw records.
type Page struct {
	Records []Record
	// Total is the remote's total match count, or 0 when unknown.
	Total int
}

// Remote fetches pages of raw records from an external source.
type Remote interface {
	FetchPage(ctx context.Context, entity string, req PageRequest) (*Page, error)
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, entity string, req PageRequest) (*Page, error)

func (f RemoteFunc) FetchPage(ctx context.Context, entity string, req PageRequest) (*Page, error) {
	return f(ctx, entity, req)
}

var (
	// ErrRemoteIO marks network or protocol failures of a remote source.
	ErrRemoteIO = errors.New("remote i/o failure")
	// ErrUnknownSource indicates no remote is registered for an alias source.
	ErrUnknownSource = errors.New("unknown remote source")
)

// RemoteError wraps a failed page fetch. It is always retryable by the caller.
type RemoteError struct {
	Source string
	Entity string
	Page   int
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("fetch %s/%s page %d: %v", e.Source, e.Entity, e.Page, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRemoteIO) hold for every RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteIO
}

// Retryable reports that the failed fetch may be attempted again.
func (e *RemoteError) Retryable() bool {
	return true
}
