package parser

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/searchtree/dict"
	"github.com/hupe1980/searchtree/model"
	"github.com/hupe1980/searchtree/registry"
	"github.com/hupe1980/searchtree/stream"
)

// Query attribute names.
const (
	AttrSearchTerms             = "SearchTerms"
	AttrAlteredQuery            = "AlteredQuery"
	AttrAlterationOverrideQuery = "AlterationOverrideQuery"
)

type redirectKind uint8

const (
	redirectNone redirectKind = iota
	redirectResult
	redirectResponse
)

// frame is one open element that produced a result.
type frame struct {
	tag    string
	result *model.Result
	owner  *model.Response
	entry  registry.ResultEntry
	keep   bool

	redirect     redirectKind
	parent       *model.Result
	parentExtend registry.ResultExtendFunc
	resp         *model.Response
	respExtend   registry.ResponseExtendFunc
}

type role uint8

const (
	roleIgnored role = iota
	roleResponse
	roleFrame
	roleQuery
	roleSkipped
)

// element is one open element of any kind.
type element struct {
	name      string
	role      role
	prev      *model.Response
	prevEntry registry.ResponseEntry
}

type query struct {
	terms, altered, override string
}

// Stats counts what a machine has processed since creation or Reset.
type Stats struct {
	Elements  int
	Responses int
	Results   int
	Common    int
	Skipped   int
	Discarded int
	MaxDepth  int
}

type options struct {
	observer     Observer
	responseOpts []model.ResponseOption
	transparent  map[string]struct{}
}

// Option configures a Machine.
type Option func(*options)

// WithObserver receives skip and discard notifications.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithResponseOptions applies opts to every response the machine creates.
func WithResponseOptions(opts ...model.ResponseOption) Option {
	return func(o *options) {
		o.responseOpts = append(o.responseOpts, opts...)
	}
}

// WithTransparentElements names envelope elements (for example Atom "feed"
// or "entry") that are ignored while their content is still processed.
func WithTransparentElements(names ...string) Option {
	return func(o *options) {
		for _, n := range names {
			o.transparent[n] = struct{}{}
		}
	}
}

// Machine turns start/end/error events into a response tree.
//
// A Machine is not safe for concurrent use. Run one per parse; it may be
// reused after a successful Finish, and after Reset once it has failed.
type Machine struct {
	reg  *registry.Registry
	opts options

	current      *model.Response
	currentEntry registry.ResponseEntry
	top          *model.Response

	frames    []frame
	elems     []element
	pending   *query
	skipDepth int

	line, column int
	failed       error
	stats        Stats
}

// New creates a Machine resolving element names through reg.
// A nil reg selects registry.Default().
func New(reg *registry.Registry, opts ...Option) *Machine {
	if reg == nil {
		reg = registry.Default()
	}
	o := options{
		observer:    noopObserver{},
		transparent: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Machine{reg: reg, opts: o}
}

// Stats returns the counters of the current or last parse.
func (m *Machine) Stats() Stats { return m.stats }

// Depth returns the number of open elements.
func (m *Machine) Depth() int { return len(m.elems) }

// Err returns the failure that put the machine into its error state, if any.
func (m *Machine) Err() error { return m.failed }

// Handle dispatches one event.
func (m *Machine) Handle(ev stream.Event) error {
	m.line, m.column = ev.Line, ev.Column
	switch ev.Kind {
	case stream.EventStartElement:
		return m.StartElement(ev.Name, stream.Attrs(ev.Attrs))
	case stream.EventEndElement:
		return m.EndElement(ev.Name)
	case stream.EventError:
		err := ev.Err
		if err == nil {
			err = errors.New("malformed input")
		}
		return m.Fail(err)
	default:
		return m.Fail(fmt.Errorf("unexpected event kind %v", ev.Kind))
	}
}

// Run feeds every event of src into the machine and returns the finished
// tree. A canceled ctx is converted into a Fail, so an abandoned parse still
// unwinds and frees what it built.
func (m *Machine) Run(ctx context.Context, src stream.Source) (*model.Response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, m.Fail(err)
		}
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return m.Finish()
		}
		if err != nil {
			return nil, m.Fail(err)
		}
		if err := m.Handle(ev); err != nil {
			return nil, err
		}
	}
}

// StartElement processes an opening tag. A non-nil error is fatal: the
// machine has already unwound and freed the partial tree.
func (m *Machine) StartElement(name string, attrs *dict.Dictionary) error {
	if m.failed != nil {
		return m.failed
	}
	if attrs == nil {
		attrs = dict.New(0)
	}
	m.stats.Elements++

	if m.skipDepth > 0 {
		m.skipDepth++
		m.push(element{name: name, role: roleSkipped})
		return nil
	}

	if registry.IsResultName(name) {
		e, ok := m.reg.LookupResult(name)
		if !ok {
			m.skip(name, SkipUnknownResult, nil)
			return nil
		}
		if !e.Common {
			m.startResult(name, e, attrs)
			return nil
		}
	}

	if name == registry.QueryElement {
		return m.startQuery(name, attrs)
	}

	if e, ok := m.reg.LookupResult(name); ok && e.Common {
		m.startCommon(name, e, attrs)
		return nil
	}

	if _, ok := m.opts.transparent[name]; ok {
		m.push(element{name: name, role: roleIgnored})
		return nil
	}

	if e, ok := m.reg.LookupResponse(name); ok {
		return m.startResponse(name, e, attrs)
	}

	if len(m.frames) > 0 {
		m.opts.observer.ResultSkipped(name, SkipUnknownElement, nil)
		m.stats.Skipped++
		m.push(element{name: name, role: roleIgnored})
		return nil
	}
	return m.fail(name, fmt.Errorf("%w: %s", ErrUnknownElement, name))
}

// skip drops the element and everything nested in it.
func (m *Machine) skip(name string, reason SkipReason, err error) {
	m.opts.observer.ResultSkipped(name, reason, err)
	m.stats.Skipped++
	m.skipDepth = 1
	m.push(element{name: name, role: roleSkipped})
}

func (m *Machine) startResult(name string, e registry.ResultEntry, attrs *dict.Dictionary) {
	resp := m.current
	if resp == nil || resp.IsBundle() {
		m.skip(name, SkipNoResponse, nil)
		return
	}

	res, err := resp.NewResult(e.Kind, name, e.AcceptsArray, false)
	if err != nil {
		m.skip(name, SkipAllocation, err)
		return
	}
	if err := e.Create(res, attrs); err != nil {
		_ = resp.Discard(res)
		m.skip(name, SkipCreateFailed, err)
		return
	}
	if err := resp.AddResult(res, false); err != nil {
		_ = resp.Discard(res)
		m.skip(name, SkipCreateFailed, err)
		return
	}

	m.stats.Results++
	m.frames = append(m.frames, frame{tag: name, result: res, owner: resp, entry: e, keep: true})
	m.push(element{name: name, role: roleFrame})
}

func (m *Machine) startQuery(name string, attrs *dict.Dictionary) error {
	terms, ok := attrs.GetString(AttrSearchTerms)
	if !ok {
		return m.fail(name, ErrMissingQueryMetadata)
	}
	q := query{terms: terms}
	q.altered, _ = attrs.GetString(AttrAlteredQuery)
	q.override, _ = attrs.GetString(AttrAlterationOverrideQuery)

	if m.current != nil && !m.current.IsBundle() {
		m.current.SetQuery(q.terms, q.altered, q.override)
	} else {
		m.pending = &q
	}
	m.push(element{name: name, role: roleQuery})
	return nil
}

func (m *Machine) startCommon(name string, e registry.ResultEntry, attrs *dict.Dictionary) {
	resp := m.current
	if resp == nil || resp.IsBundle() {
		m.skip(name, SkipNoResponse, nil)
		return
	}

	res, err := resp.NewResult(e.Kind, name, e.AcceptsArray, true)
	if err != nil {
		m.skip(name, SkipAllocation, err)
		return
	}
	if err := e.Create(res, attrs); err != nil {
		_ = resp.Discard(res)
		m.skip(name, SkipCreateFailed, err)
		return
	}
	m.stats.Common++

	f := frame{tag: name, result: res, owner: resp, entry: e, keep: true}
	if n := len(m.frames); n > 0 {
		enclosing := m.frames[n-1]
		f.redirect = redirectResult
		f.parent = enclosing.result
		f.parentExtend = enclosing.entry.Extend
	} else {
		f.redirect = redirectResponse
		f.resp = resp
		f.respExtend = m.currentEntry.Extend
	}

	if e.AcceptsArray {
		m.frames = append(m.frames, f)
		m.push(element{name: name, role: roleFrame})
		return
	}
	m.offer(f)
	m.push(element{name: name, role: roleIgnored})
}

// offer hands a redirected result to its target and releases it when declined.
func (m *Machine) offer(f frame) {
	var keep bool
	var target string
	switch f.redirect {
	case redirectResult:
		target = f.parent.Name()
		keep = f.parentExtend != nil && f.parentExtend(f.parent, f.result)
	case redirectResponse:
		target = f.resp.Name()
		keep = f.respExtend != nil && f.respExtend(f.resp, f.result)
	default:
		keep = f.keep
	}
	if keep {
		return
	}
	_ = f.owner.Discard(f.result)
	m.stats.Discarded++
	m.opts.observer.ResultDiscarded(f.tag, target)
}

func (m *Machine) startResponse(name string, e registry.ResponseEntry, attrs *dict.Dictionary) error {
	resp := model.NewResponse(e.Kind, name, m.opts.responseOpts...)
	if err := e.Create(resp, attrs); err != nil {
		resp.Free()
		return m.fail(name, fmt.Errorf("%w: %w", ErrResponseCreate, err))
	}
	if q := m.pending; q != nil && !resp.IsBundle() {
		resp.SetQuery(q.terms, q.altered, q.override)
		m.pending = nil
	}

	switch {
	case m.top == nil:
		m.top = resp
	case m.top.IsBundle():
		if err := m.top.AddChild(resp); err != nil {
			resp.Free()
			return m.fail(name, err)
		}
	default:
		bundle, err := m.newBundle()
		if err != nil {
			resp.Free()
			return m.fail(name, err)
		}
		if err := bundle.AddChild(m.top); err != nil {
			bundle.Free()
			resp.Free()
			return m.fail(name, fmt.Errorf("%w: %w", ErrBundleCreate, err))
		}
		m.top = bundle
		if err := bundle.AddChild(resp); err != nil {
			resp.Free()
			return m.fail(name, fmt.Errorf("%w: %w", ErrBundleCreate, err))
		}
	}

	m.stats.Responses++
	m.push(element{name: name, role: roleResponse, prev: m.current, prevEntry: m.currentEntry})
	m.current, m.currentEntry = resp, e
	return nil
}

func (m *Machine) newBundle() (*model.Response, error) {
	e, ok := m.reg.LookupResponse(registry.BundleElement)
	if !ok {
		return nil, fmt.Errorf("%w: no %q registration", ErrBundleCreate, registry.BundleElement)
	}
	bundle := model.NewBundle(m.opts.responseOpts...)
	if err := e.Create(bundle, dict.New(0)); err != nil {
		bundle.Free()
		return nil, fmt.Errorf("%w: %w", ErrBundleCreate, err)
	}
	return bundle, nil
}

func (m *Machine) push(el element) {
	m.elems = append(m.elems, el)
	if d := len(m.elems); d > m.stats.MaxDepth {
		m.stats.MaxDepth = d
	}
}

// EndElement processes a closing tag. A non-nil error is fatal.
func (m *Machine) EndElement(name string) error {
	if m.failed != nil {
		return m.failed
	}
	n := len(m.elems)
	if n == 0 || m.elems[n-1].name != name {
		return m.fail(name, ErrMismatchedEnd)
	}
	el := m.elems[n-1]
	m.elems = m.elems[:n-1]

	switch el.role {
	case roleSkipped:
		m.skipDepth--
	case roleFrame:
		f := m.frames[len(m.frames)-1]
		m.frames = m.frames[:len(m.frames)-1]
		m.offer(f)
	case roleResponse:
		m.current, m.currentEntry = el.prev, el.prevEntry
	}
	return nil
}

// Fail puts the machine into its error state: both stacks are unwound, the
// tree built so far is freed and captured query strings are dropped.
func (m *Machine) Fail(err error) error {
	if m.failed != nil {
		return m.failed
	}
	return m.fail("", err)
}

func (m *Machine) fail(name string, err error) error {
	perr := &ParseError{Element: name, Line: m.line, Column: m.column, Err: err}
	m.unwind()
	m.failed = perr
	return perr
}

func (m *Machine) unwind() {
	clear(m.frames)
	m.frames = m.frames[:0]
	clear(m.elems)
	m.elems = m.elems[:0]
	if m.top != nil {
		m.top.Free()
	}
	m.top = nil
	m.current = nil
	m.currentEntry = registry.ResponseEntry{}
	m.pending = nil
	m.skipDepth = 0
}

// Finish completes the parse and hands ownership of the root response to the
// caller, who must Free it.
func (m *Machine) Finish() (*model.Response, error) {
	if m.failed != nil {
		return nil, m.failed
	}
	if n := len(m.elems); n > 0 {
		return nil, m.fail(m.elems[n-1].name, ErrUnterminated)
	}
	if m.top == nil {
		return nil, m.fail("", ErrNoResponse)
	}
	resp := m.top
	m.top = nil
	m.unwind()
	return resp, nil
}

// Reset abandons any parse in progress, freeing its tree, and clears the
// error state and counters.
func (m *Machine) Reset() {
	m.unwind()
	m.failed = nil
	m.line, m.column = 0, 0
	m.stats = Stats{}
}
