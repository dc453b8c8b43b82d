package searchtree

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/searchtree/archive"
	"github.com/hupe1980/searchtree/model"
	"github.com/hupe1980/searchtree/parser"
	"github.com/hupe1980/searchtree/registry"
	"github.com/hupe1980/searchtree/resource"
	"github.com/hupe1980/searchtree/stream"
)

// Parser turns search replies into response trees.
//
// A Parser is safe for concurrent use. Every call runs its own parse machine;
// the registry is the only state shared between calls.
type Parser struct {
	opts     options
	reg      *registry.Registry
	rc       *resource.Controller
	logger   *Logger
	metrics  MetricsCollector
	respOpts []model.ResponseOption
}

// New creates a Parser.
func New(optFns ...Option) *Parser {
	o := applyOptions(optFns)

	p := &Parser{
		opts:    o,
		reg:     o.registry,
		rc:      o.rc,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	if o.serviceID != "" {
		p.logger = p.logger.WithService(o.serviceID)
		p.respOpts = append(p.respOpts, model.WithServiceID(o.serviceID))
	}
	if o.chunkSize > 0 {
		p.respOpts = append(p.respOpts, model.WithChunkSize(o.chunkSize))
	}
	if o.maxAllocSize > 0 {
		p.respOpts = append(p.respOpts, model.WithMaxAllocSize(o.maxAllocSize))
	}
	if o.rc != nil {
		p.respOpts = append(p.respOpts, model.WithMemoryAcquirer(o.rc))
	}
	return p
}

// Registry returns the registry the parser resolves element names with.
func (p *Parser) Registry() *registry.Registry { return p.reg }

// RegisterResult adds a custom result kind. See registry.Registry.RegisterResult.
func (p *Parser) RegisterResult(ctx context.Context, name string, acceptsArray, common bool, create registry.ResultCreateFunc, extend registry.ResultExtendFunc) error {
	err := translateError(p.reg.RegisterResult(name, acceptsArray, common, create, extend))
	p.logger.LogRegistration(ctx, "register_result", name, err)
	return err
}

// RegisterResponse adds a custom response kind. See registry.Registry.RegisterResponse.
func (p *Parser) RegisterResponse(ctx context.Context, name string, create registry.ResponseCreateFunc, extend registry.ResponseExtendFunc) error {
	err := translateError(p.reg.RegisterResponse(name, create, extend))
	p.logger.LogRegistration(ctx, "register_response", name, err)
	return err
}

// Unregister removes a custom registration. Parses already running keep the
// entries they looked up.
func (p *Parser) Unregister(ctx context.Context, name string) error {
	err := translateError(p.reg.Unregister(name))
	p.logger.LogRegistration(ctx, "unregister", name, err)
	return err
}

// Parse decodes and parses one reply body.
//
// On success the caller owns the returned response and must Free it. On
// failure nothing built so far survives and the error wraps ErrParse, or the
// decoding error when the body could not be opened.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*model.Response, error) {
	body, err := stream.Decode(r, p.opts.encoding)
	if err != nil {
		return nil, translateError(err)
	}
	defer func() { _ = body.Close() }()

	var in io.Reader = body
	if p.rc != nil {
		in = resource.NewRateLimitedReader(ctx, body, p.rc)
	}
	return p.ParseEvents(ctx, stream.NewXMLSource(in, p.opts.limits))
}

// ParseEvents parses an already tokenized event stream.
func (p *Parser) ParseEvents(ctx context.Context, src stream.Source) (*model.Response, error) {
	if err := p.rc.AcquireParse(ctx); err != nil {
		return nil, err
	}
	defer p.rc.ReleaseParse()

	start := time.Now()
	m := parser.New(p.reg,
		parser.WithObserver(&observer{ctx: ctx, logger: p.logger, metrics: p.metrics}),
		parser.WithResponseOptions(p.respOpts...),
		parser.WithTransparentElements(p.opts.transparent...),
	)

	resp, err := m.Run(ctx, src)
	err = translateError(err)
	duration := time.Since(start)
	stats := m.Stats()

	var name string
	if resp != nil {
		name = resp.Name()
	}
	p.metrics.RecordParse(duration, stats.Results, err)
	p.logger.LogParse(ctx, name, stats.Results, stats.Skipped, duration, err)
	return resp, err
}

// ParseAll parses independent reply bodies concurrently. The responses are
// returned in input order. If any parse fails, every response built by the
// other parses is freed and the first error is returned.
func (p *Parser) ParseAll(ctx context.Context, bodies ...io.Reader) ([]*model.Response, error) {
	out := make([]*model.Response, len(bodies))

	g, gctx := errgroup.WithContext(ctx)
	if p.opts.maxConcurrency > 0 {
		g.SetLimit(p.opts.maxConcurrency)
	}
	for i, body := range bodies {
		g.Go(func() error {
			resp, err := p.Parse(gctx, body)
			if err != nil {
				return fmt.Errorf("body %d: %w", i, err)
			}
			out[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, resp := range out {
			if resp != nil {
				resp.Free()
			}
		}
		return nil, err
	}
	return out, nil
}

// ParseArchived parses a recorded reply from store.
func (p *Parser) ParseArchived(ctx context.Context, store archive.Store, name string) (*model.Response, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		err = translateError(err)
		p.logger.WithSource(name).ErrorContext(ctx, "open archived reply failed", "error", err)
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return p.Parse(ctx, rc)
}

// observer forwards recoverable parse conditions to logging and metrics.
type observer struct {
	ctx     context.Context
	logger  *Logger
	metrics MetricsCollector
}

func (o *observer) ResultSkipped(name string, reason parser.SkipReason, err error) {
	o.metrics.RecordSkippedResult(reason.String())
	o.logger.LogSkippedResult(o.ctx, name, reason.String(), err)
}

func (o *observer) ResultDiscarded(name, target string) {
	o.metrics.RecordDiscardedResult()
	o.logger.LogDiscardedResult(o.ctx, name, target)
}
