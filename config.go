package searchtree

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/searchtree/registry"
	"github.com/hupe1980/searchtree/resource"
	"github.com/hupe1980/searchtree/stream"
)

// Config is the file form of a Parser configuration.
//
//	service_id: news-eu
//	content_encoding: gzip
//	transparent_elements: [feed, entry, content]
//	resources:
//	  memory_limit_bytes: 67108864
//	  max_concurrent_parses: 8
//	registry:
//	  results:
//	    - name: RecipeResult
//	      fields: {Title: string, Minutes: int}
type Config struct {
	ServiceID           string          `yaml:"service_id,omitempty"`
	ContentEncoding     string          `yaml:"content_encoding,omitempty"`
	MaxAllocSize        int             `yaml:"max_alloc_size,omitempty"`
	ArenaChunkSize      int             `yaml:"arena_chunk_size,omitempty"`
	MaxConcurrency      int             `yaml:"max_concurrency,omitempty"`
	TransparentElements []string        `yaml:"transparent_elements,omitempty"`
	LogLevel            string          `yaml:"log_level,omitempty"`
	LogFormat           string          `yaml:"log_format,omitempty"`
	XMLLimits           stream.Limits   `yaml:"xml_limits,omitempty"`
	Resources           resource.Config `yaml:"resources,omitempty"`
	Registry            registry.Config `yaml:"registry,omitempty"`
}

// WithDefaults returns a copy of c with empty fields filled in.
func (c Config) WithDefaults() Config {
	if c.ContentEncoding == "" {
		c.ContentEncoding = "identity"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.XMLLimits.MaxDepth <= 0 {
		c.XMLLimits.MaxDepth = stream.DefaultMaxDepth
	}
	if c.XMLLimits.MaxAttrs <= 0 {
		c.XMLLimits.MaxAttrs = stream.DefaultMaxAttrs
	}
	if c.Resources.MaxConcurrentParses <= 0 {
		c.Resources.MaxConcurrentParses = int64(runtime.GOMAXPROCS(0))
	}
	return c
}

// LoadConfig decodes a YAML configuration. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode config: %w", ErrInvalidArgument, err)
	}
	return cfg.WithDefaults(), nil
}

// LoadConfigFile reads a YAML configuration from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}

func (c Config) logger() (*Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalidArgument, c.LogLevel)
	}
	switch c.LogFormat {
	case "text":
		return NewTextLogger(level), nil
	case "json":
		return NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrInvalidArgument, c.LogFormat)
	}
}

// NewFromConfig creates a Parser from cfg. The parser gets its own registry
// holding the built-in kinds plus cfg.Registry, and its own resource
// controller. optFns are applied after the configuration and win over it.
func NewFromConfig(cfg Config, optFns ...Option) (*Parser, error) {
	cfg = cfg.WithDefaults()

	if !stream.Supported(cfg.ContentEncoding) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, cfg.ContentEncoding)
	}

	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	if err := reg.Apply(cfg.Registry); err != nil {
		return nil, err
	}

	opts := []Option{
		WithRegistry(reg),
		WithLogger(logger),
		WithResourceController(resource.NewController(cfg.Resources)),
		WithServiceID(cfg.ServiceID),
		WithContentEncoding(cfg.ContentEncoding),
		WithMaxAllocSize(cfg.MaxAllocSize),
		WithArenaChunkSize(cfg.ArenaChunkSize),
		WithMaxConcurrency(cfg.MaxConcurrency),
		WithXMLLimits(cfg.XMLLimits),
		WithTransparentElements(cfg.TransparentElements...),
	}
	return New(append(opts, optFns...)...), nil
}
