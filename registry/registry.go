package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/searchtree/dict"
	"github.com/hupe1980/searchtree/model"
)

var (
	// ErrAlreadyRegistered is returned when a name collides with a built-in
	// or previously registered name.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrNotFound is returned when unregistering a name with no custom entry.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for an empty name, a missing creation
	// callback or a malformed schema.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	// ResultSuffix marks element names of ordinary results.
	ResultSuffix = "Result"
	// ErrorElement is the element name of service error records.
	ErrorElement = "Error"
	// QueryElement is the reserved query-metadata element name.
	QueryElement = "Query"
	// BundleElement names the synthetic bundle response.
	BundleElement = "Bundle"
)

// IsResultName reports whether name follows the ordinary result naming rule.
func IsResultName(name string) bool {
	return name == ErrorElement || (len(name) > len(ResultSuffix) && strings.HasSuffix(name, ResultSuffix))
}

// ResultCreateFunc populates a freshly allocated result from element attributes.
type ResultCreateFunc func(res *model.Result, attrs *dict.Dictionary) error

// ResultExtendFunc offers a closed child to a parent result. Returning false
// declines the child, which is then released.
type ResultExtendFunc func(parent, child *model.Result) bool

// ResponseCreateFunc populates a freshly created response from element attributes.
type ResponseCreateFunc func(resp *model.Response, attrs *dict.Dictionary) error

// ResponseExtendFunc offers a common result to a response. Returning false
// declines the child, which is then released.
type ResponseExtendFunc func(resp *model.Response, child *model.Result) bool

// ResultEntry binds a result element name to its callbacks.
type ResultEntry struct {
	Name         string
	Kind         model.ResultKind
	AcceptsArray bool
	Common       bool
	Create       ResultCreateFunc
	Extend       ResultExtendFunc
	Builtin      bool
}

// ResponseEntry binds a response element name to its callbacks.
type ResponseEntry struct {
	Name    string
	Kind    model.ResponseKind
	Create  ResponseCreateFunc
	Extend  ResponseExtendFunc
	Builtin bool
}

// Entries is a point-in-time copy of the registry contents.
type Entries struct {
	Results   []ResultEntry
	Responses []ResponseEntry
}

type options struct {
	builtins bool
}

// Option configures a Registry.
type Option func(*options)

// WithoutBuiltins creates a registry with no built-in entries.
func WithoutBuiltins() Option {
	return func(o *options) {
		o.builtins = false
	}
}

// Registry maps element names to creation and extension callbacks.
//
// A single mutex guards every access for the duration of that access only, so
// registrations never wait for a running parse. Entries are returned by value;
// a parse keeps using the entry it looked up even if it is later unregistered.
type Registry struct {
	mu sync.Mutex

	builtinResults   map[string]ResultEntry
	builtinResponses map[string]ResponseEntry
	results          map[string]ResultEntry
	responses        map[string]ResponseEntry
}

// New creates a registry holding the built-in kinds.
func New(opts ...Option) *Registry {
	o := options{builtins: true}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		builtinResults:   make(map[string]ResultEntry),
		builtinResponses: make(map[string]ResponseEntry),
		results:          make(map[string]ResultEntry),
		responses:        make(map[string]ResponseEntry),
	}
	if o.builtins {
		for _, s := range builtinResults {
			e := s.mustEntry()
			e.Builtin = true
			r.builtinResults[e.Name] = e
		}
		for _, s := range builtinResponses {
			e := s.mustEntry()
			e.Builtin = true
			r.builtinResponses[e.Name] = e
		}
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return New() })

// Default returns the process-wide registry, created on first use.
func Default() *Registry {
	return defaultRegistry()
}

// RegisterResult adds a custom result kind.
func (r *Registry) RegisterResult(name string, acceptsArray, common bool, create ResultCreateFunc, extend ResultExtendFunc) error {
	e := ResultEntry{
		Name:         name,
		Kind:         model.ResultCustom,
		AcceptsArray: acceptsArray,
		Common:       common,
		Create:       create,
		Extend:       extend,
	}
	if err := validateResult(e); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFreeLocked(name); err != nil {
		return err
	}
	r.results[name] = e
	return nil
}

// RegisterResponse adds a custom response kind.
func (r *Registry) RegisterResponse(name string, create ResponseCreateFunc, extend ResponseExtendFunc) error {
	e := ResponseEntry{
		Name:   name,
		Kind:   model.ResponseCustom,
		Create: create,
		Extend: extend,
	}
	if err := validateResponse(e); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFreeLocked(name); err != nil {
		return err
	}
	r.responses[name] = e
	return nil
}

func validateResult(e ResultEntry) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	case e.Create == nil:
		return fmt.Errorf("%w: %q: creation callback required", ErrInvalidArgument, e.Name)
	case !e.Common && !IsResultName(e.Name):
		return fmt.Errorf("%w: %q: result names must end with %q", ErrInvalidArgument, e.Name, ResultSuffix)
	case e.Common && IsResultName(e.Name):
		return fmt.Errorf("%w: %q: common kinds cannot use the %q suffix", ErrInvalidArgument, e.Name, ResultSuffix)
	}
	return nil
}

func validateResponse(e ResponseEntry) error {
	switch {
	case e.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidArgument)
	case e.Create == nil:
		return fmt.Errorf("%w: %q: creation callback required", ErrInvalidArgument, e.Name)
	case IsResultName(e.Name):
		return fmt.Errorf("%w: %q: response names cannot use the %q suffix", ErrInvalidArgument, e.Name, ResultSuffix)
	}
	return nil
}

func (r *Registry) checkFreeLocked(name string) error {
	if name == QueryElement {
		return fmt.Errorf("%w: %q is reserved", ErrAlreadyRegistered, name)
	}
	if _, ok := r.builtinResults[name]; ok {
		return fmt.Errorf("%w: %q is built in", ErrAlreadyRegistered, name)
	}
	if _, ok := r.builtinResponses[name]; ok {
		return fmt.Errorf("%w: %q is built in", ErrAlreadyRegistered, name)
	}
	if _, ok := r.results[name]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	if _, ok := r.responses[name]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	return nil
}

// Unregister removes a custom entry. Built-in entries are never removable.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.results[name]; ok {
		delete(r.results, name)
		return nil
	}
	if _, ok := r.responses[name]; ok {
		delete(r.responses, name)
		return nil
	}
	_, br := r.builtinResults[name]
	_, bp := r.builtinResponses[name]
	if br || bp {
		return fmt.Errorf("%w: %q is built in", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// LookupResult returns the result entry for name, built-ins first.
func (r *Registry) LookupResult(name string) (ResultEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.builtinResults[name]; ok {
		return e, true
	}
	e, ok := r.results[name]
	return e, ok
}

// LookupResponse returns the response entry for name, built-ins first.
func (r *Registry) LookupResponse(name string) (ResponseEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.builtinResponses[name]; ok {
		return e, true
	}
	e, ok := r.responses[name]
	return e, ok
}

// Entries returns every entry sorted by name.
func (r *Registry) Entries() Entries {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out Entries
	for _, e := range r.builtinResults {
		out.Results = append(out.Results, e)
	}
	for _, e := range r.results {
		out.Results = append(out.Results, e)
	}
	for _, e := range r.builtinResponses {
		out.Responses = append(out.Responses, e)
	}
	for _, e := range r.responses {
		out.Responses = append(out.Responses, e)
	}
	slices.SortFunc(out.Results, func(a, b ResultEntry) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(out.Responses, func(a, b ResponseEntry) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of custom entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results) + len(r.responses)
}

// Reset drops every custom entry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.results)
	clear(r.responses)
}
