package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"weak"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/searchtree/dict"
	"github.com/hupe1980/searchtree/internal/arena"
)

var (
	// ErrAllocationDenied is returned when an allocation exceeds the per-call
	// ceiling or the memory budget is exhausted.
	ErrAllocationDenied = errors.New("allocation denied")
	// ErrFreed is returned when using a response (or one of its results) after Free.
	ErrFreed = errors.New("response freed")
	// ErrReleased is returned when attaching a result whose storage was released.
	ErrReleased = errors.New("result released")
	// ErrForeignResult is returned when a result is attached to a response
	// (or result) that does not own it.
	ErrForeignResult = errors.New("result belongs to another response")
	// ErrResultNotFound is returned by RemoveResult for results not in the list.
	ErrResultNotFound = errors.New("result not found")
	// ErrNotBundle is returned when adding a child to a non-bundle response.
	ErrNotBundle = errors.New("response is not a bundle")
	// ErrBundleResult is returned when a bundle is asked to own a result.
	ErrBundleResult = errors.New("bundle responses cannot own results")
	// ErrCommonVisible is returned when a common result is added to the visible list.
	ErrCommonVisible = errors.New("common results cannot be visible")
	// ErrNotArray is returned when appending to a result that is not array-typed.
	ErrNotArray = errors.New("result is not array-typed")
)

// Metadata keys written by the parser.
const (
	MetaQuery                   = "query"
	MetaAlteredQuery            = "altered_query"
	MetaAlterationOverrideQuery = "alteration_override_query"
	MetaTotal                   = "total"
	MetaOffset                  = "offset"
)

// MemoryAcquirer accounts arena chunks against a shared budget.
// *resource.Controller implements it.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

type responseOptions struct {
	serviceID    string
	chunkSize    int
	maxAllocSize int
	acquirer     MemoryAcquirer
}

// ResponseOption configures a new Response.
type ResponseOption func(*responseOptions)

// WithServiceID sets the owning service id.
func WithServiceID(id string) ResponseOption {
	return func(o *responseOptions) {
		o.serviceID = id
	}
}

// WithChunkSize sets the arena chunk size.
func WithChunkSize(size int) ResponseOption {
	return func(o *responseOptions) {
		o.chunkSize = size
	}
}

// WithMaxAllocSize sets the per-call allocation ceiling.
func WithMaxAllocSize(size int) ResponseOption {
	return func(o *responseOptions) {
		o.maxAllocSize = size
	}
}

// WithMemoryAcquirer accounts the arena against a shared memory budget.
func WithMemoryAcquirer(acq MemoryAcquirer) ResponseOption {
	return func(o *responseOptions) {
		o.acquirer = acq
	}
}

var responseIDs atomic.Uint64

// Response is one parsed search reply or a bundle of replies.
type Response struct {
	id          uint64
	kind        ResponseKind
	name        string
	serviceID   string
	nextPage    string
	hasNextPage bool
	meta        *dict.Dictionary

	visible  []*Result
	internal []*Result
	children []*Response

	// table holds every result allocated from this response, indexed by Result.id.
	table     []*Result
	released  *roaring.Bitmap
	allocated uint32

	arena *arena.Arena
	freed bool
}

// NewResponse creates an empty response of the given kind.
// name is the element name it was created from.
func NewResponse(kind ResponseKind, name string, opts ...ResponseOption) *Response {
	var o responseOptions
	for _, opt := range opts {
		opt(&o)
	}

	arenaOpts := []arena.Option{
		arena.WithChunkSize(o.chunkSize),
		arena.WithMaxAllocSize(o.maxAllocSize),
	}
	if o.acquirer != nil {
		arenaOpts = append(arenaOpts, arena.WithMemoryAcquirer(o.acquirer))
	}

	return &Response{
		id:        responseIDs.Add(1),
		kind:      kind,
		name:      name,
		serviceID: o.serviceID,
		meta:      dict.New(8),
		released:  roaring.New(),
		arena:     arena.New(arenaOpts...),
	}
}

// NewBundle creates an empty bundle response.
func NewBundle(opts ...ResponseOption) *Response {
	return NewResponse(ResponseBundle, ResponseBundle.String(), opts...)
}

// ID returns a process-unique identifier.
func (r *Response) ID() uint64 { return r.id }

// Kind returns the response kind.
func (r *Response) Kind() ResponseKind { return r.kind }

// Name returns the element name the response was created from.
func (r *Response) Name() string { return r.name }

// IsBundle reports whether r groups other responses.
func (r *Response) IsBundle() bool { return r.kind == ResponseBundle }

// ServiceID returns the owning service id.
func (r *Response) ServiceID() string { return r.serviceID }

// SetServiceID sets the owning service id.
func (r *Response) SetServiceID(id string) { r.serviceID = id }

// NextPageToken returns the continuation token, if the reply carried one.
func (r *Response) NextPageToken() (string, bool) {
	return r.nextPage, r.hasNextPage
}

// SetNextPageToken sets the continuation token.
func (r *Response) SetNextPageToken(token string) {
	r.nextPage = token
	r.hasNextPage = true
}

// Metadata returns the free-form metadata dictionary.
func (r *Response) Metadata() *dict.Dictionary { return r.meta }

// SetQuery replaces the query metadata. Empty altered/override values are removed.
func (r *Response) SetQuery(terms, altered, override string) {
	r.meta.Put(MetaQuery, dict.String(terms))
	putOptional(r.meta, MetaAlteredQuery, altered)
	putOptional(r.meta, MetaAlterationOverrideQuery, override)
}

func putOptional(d *dict.Dictionary, key, value string) {
	if value == "" {
		d.Remove(key)
		return
	}
	d.Put(key, dict.String(value))
}

// Query returns the search terms the reply answers.
func (r *Response) Query() (string, bool) { return r.meta.GetString(MetaQuery) }

// AlteredQuery returns the query the service actually ran, if it altered it.
func (r *Response) AlteredQuery() (string, bool) { return r.meta.GetString(MetaAlteredQuery) }

// AlterationOverrideQuery returns the query that disables the alteration.
func (r *Response) AlterationOverrideQuery() (string, bool) {
	return r.meta.GetString(MetaAlterationOverrideQuery)
}

// Total returns the estimated total number of matches.
func (r *Response) Total() (int64, bool) { return r.meta.GetInt(MetaTotal) }

// Offset returns the offset of the first result.
func (r *Response) Offset() (int64, bool) { return r.meta.GetInt(MetaOffset) }

// Results returns the visible results in document order.
func (r *Response) Results() []*Result { return slices.Clone(r.visible) }

// InternalResults returns the internal results in document order.
func (r *Response) InternalResults() []*Result { return slices.Clone(r.internal) }

// Children returns the child responses of a bundle.
func (r *Response) Children() []*Response { return slices.Clone(r.children) }

// AddChild appends child to a bundle. The bundle takes ownership.
func (r *Response) AddChild(child *Response) error {
	switch {
	case r.freed:
		return ErrFreed
	case !r.IsBundle():
		return ErrNotBundle
	case child == nil || child == r:
		return fmt.Errorf("%w: invalid child", ErrNotBundle)
	case child.freed:
		return fmt.Errorf("child: %w", ErrFreed)
	}
	r.children = append(r.children, child)
	return nil
}

// NewResult allocates a result owned by r. The result is not attached to any
// list; use AddResult or a parent result to attach it.
func (r *Response) NewResult(kind ResultKind, name string, isArray, common bool) (*Result, error) {
	if r.freed {
		return nil, ErrFreed
	}
	if r.IsBundle() {
		return nil, ErrBundleResult
	}
	if len(r.table) >= math.MaxUint32 {
		return nil, fmt.Errorf("%w: result table full", ErrAllocationDenied)
	}
	res := &Result{
		id:      uint32(len(r.table)), //nolint:gosec // bounded above
		kind:    kind,
		name:    name,
		isArray: isArray,
		common:  common,
		fields:  dict.New(4),
		owner:   weak.Make(r),
	}
	r.table = append(r.table, res)
	r.allocated++
	return res, nil
}

// AddResult appends res to the visible or internal list.
func (r *Response) AddResult(res *Result, internal bool) error {
	if err := r.checkOwned(res); err != nil {
		return err
	}
	if internal {
		r.internal = append(r.internal, res)
		return nil
	}
	if res.common {
		return fmt.Errorf("%w: %s", ErrCommonVisible, res.name)
	}
	r.visible = append(r.visible, res)
	return nil
}

// RemoveResult removes res from the visible or internal list. With alsoFree
// the result's storage is released immediately instead of at Free.
func (r *Response) RemoveResult(res *Result, internal, alsoFree bool) error {
	if r.freed {
		return ErrFreed
	}
	list := &r.visible
	if internal {
		list = &r.internal
	}
	i := slices.Index(*list, res)
	if i < 0 {
		return ErrResultNotFound
	}
	*list = slices.Delete(*list, i, i+1)
	if alsoFree {
		r.release(res)
	}
	return nil
}

// Discard detaches res from both lists and releases its storage.
func (r *Response) Discard(res *Result) error {
	if r.freed {
		return ErrFreed
	}
	if res == nil || res.owner != weak.Make(r) {
		return ErrForeignResult
	}
	if i := slices.Index(r.visible, res); i >= 0 {
		r.visible = slices.Delete(r.visible, i, i+1)
	}
	if i := slices.Index(r.internal, res); i >= 0 {
		r.internal = slices.Delete(r.internal, i, i+1)
	}
	r.release(res)
	return nil
}

func (r *Response) checkOwned(res *Result) error {
	switch {
	case r.freed:
		return ErrFreed
	case res == nil || res.owner != weak.Make(r):
		return ErrForeignResult
	case res.released:
		return ErrReleased
	}
	return nil
}

// release returns a result's storage exactly once, nested results included.
func (r *Response) release(res *Result) {
	if !r.released.CheckedAdd(res.id) {
		return
	}
	nested := res.nested()
	res.releaseStorage()
	for _, n := range nested {
		if n.owner == res.owner {
			r.release(n)
		}
	}
}

// Allocate carves size bytes from the response arena. The memory is valid
// until Free.
func (r *Response) Allocate(size int) ([]byte, error) {
	if r.freed {
		return nil, ErrFreed
	}
	b, err := r.arena.Alloc(size)
	if err != nil {
		return nil, translateArenaError(err)
	}
	return b, nil
}

// AllocString copies s into the response arena.
func (r *Response) AllocString(s string) (string, error) {
	if r.freed {
		return "", ErrFreed
	}
	out, err := r.arena.AllocString(s)
	if err != nil {
		return "", translateArenaError(err)
	}
	return out, nil
}

func translateArenaError(err error) error {
	if errors.Is(err, arena.ErrClosed) {
		return ErrFreed
	}
	return fmt.Errorf("%w: %w", ErrAllocationDenied, err)
}

// Free releases the response, its children, every result it allocated and
// all arena memory. Calling Free more than once is a no-op.
func (r *Response) Free() {
	if r.freed {
		return
	}
	r.freed = true

	for _, c := range r.children {
		c.Free()
	}
	for _, res := range r.table {
		r.release(res)
	}

	r.children = nil
	r.visible = nil
	r.internal = nil
	r.table = nil
	r.meta.Clear()
	r.arena.Free()
}

// Freed reports whether Free has been called.
func (r *Response) Freed() bool { return r.freed }

// ArenaStats mirrors the arena counters of a response.
type ArenaStats struct {
	BytesReserved uint64
	BytesUsed     uint64
	ActiveChunks  uint64
	TotalAllocs   uint64
}

// Stats describes the resources held by a response.
type Stats struct {
	ResultsAllocated uint32
	ResultsReleased  uint64
	Arena            ArenaStats
}

// Stats returns allocation counters. After Free, ResultsReleased equals
// ResultsAllocated and the arena holds no memory.
func (r *Response) Stats() Stats {
	a := r.arena.Stats()
	return Stats{
		ResultsAllocated: r.allocated,
		ResultsReleased:  r.released.GetCardinality(),
		Arena: ArenaStats{
			BytesReserved: a.BytesReserved,
			BytesUsed:     a.BytesUsed,
			ActiveChunks:  a.ActiveChunks,
			TotalAllocs:   a.TotalAllocs,
		},
	}
}

// Walk visits r and every descendant response depth-first until fn returns false.
func (r *Response) Walk(fn func(*Response) bool) bool {
	if !fn(r) {
		return false
	}
	for _, c := range r.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
