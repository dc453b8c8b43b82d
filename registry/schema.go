package registry

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/searchtree/dict"
	"github.com/hupe1980/searchtree/model"
)

var (
	// ErrMissingField is returned by schema callbacks when a required attribute is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is returned by schema callbacks when a typed attribute does not parse.
	ErrInvalidField = errors.New("invalid field value")
)

// NextPageAttr is the response attribute carrying the continuation token.
const NextPageAttr = "NextPageToken"

// ResultSchema declares a result kind as registration data.
type ResultSchema struct {
	Name     string            `yaml:"name"`
	Common   bool              `yaml:"common,omitempty"`
	Array    bool              `yaml:"array,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Required []string          `yaml:"required,omitempty"`
	Accepts  []string          `yaml:"accepts,omitempty"`

	kind model.ResultKind
}

// ResponseSchema declares a response kind as registration data.
type ResponseSchema struct {
	Name     string            `yaml:"name"`
	Fields   map[string]string `yaml:"fields,omitempty"`
	Required []string          `yaml:"required,omitempty"`
	Accepts  []string          `yaml:"accepts,omitempty"`

	kind model.ResponseKind
}

// Config is a set of schema registrations.
type Config struct {
	Results   []ResultSchema   `yaml:"results,omitempty"`
	Responses []ResponseSchema `yaml:"responses,omitempty"`
}

// LoadConfig decodes YAML registration data. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("%w: decode registration data: %w", ErrInvalidArgument, err)
	}
	return cfg, nil
}

// Apply registers every schema in cfg. Either all of them are registered or
// none is.
func (r *Registry) Apply(cfg Config) error {
	results := make([]ResultEntry, 0, len(cfg.Results))
	for _, s := range cfg.Results {
		e, err := s.Entry()
		if err != nil {
			return err
		}
		if err := validateResult(e); err != nil {
			return err
		}
		results = append(results, e)
	}
	responses := make([]ResponseEntry, 0, len(cfg.Responses))
	for _, s := range cfg.Responses {
		e, err := s.Entry()
		if err != nil {
			return err
		}
		if err := validateResponse(e); err != nil {
			return err
		}
		responses = append(responses, e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(results)+len(responses))
	check := func(name string) error {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q declared twice", ErrAlreadyRegistered, name)
		}
		seen[name] = struct{}{}
		return r.checkFreeLocked(name)
	}
	for _, e := range results {
		if err := check(e.Name); err != nil {
			return err
		}
	}
	for _, e := range responses {
		if err := check(e.Name); err != nil {
			return err
		}
	}

	for _, e := range results {
		r.results[e.Name] = e
	}
	for _, e := range responses {
		r.responses[e.Name] = e
	}
	return nil
}

// Entry builds a registry entry whose callbacks implement the schema.
func (s ResultSchema) Entry() (ResultEntry, error) {
	kinds, err := fieldKinds(s.Name, s.Fields)
	if err != nil {
		return ResultEntry{}, err
	}
	required := slices.Clone(s.Required)
	accepts := acceptSet(s.Accepts)

	e := ResultEntry{
		Name:         s.Name,
		Kind:         s.kind,
		AcceptsArray: s.Array,
		Common:       s.Common,
		Create: func(res *model.Result, attrs *dict.Dictionary) error {
			return populate(attrs, kinds, required, res.SetField)
		},
	}
	if len(accepts) > 0 {
		e.Extend = func(parent, child *model.Result) bool {
			if _, ok := accepts[child.Name()]; !ok {
				return false
			}
			if parent.IsArray() {
				return parent.Append(child) == nil
			}
			return parent.SetChild(child.Name(), child) == nil
		}
	}
	return e, nil
}

func (s ResultSchema) mustEntry() ResultEntry {
	e, err := s.Entry()
	if err != nil {
		panic(err)
	}
	return e
}

// Entry builds a registry entry whose callbacks implement the schema.
func (s ResponseSchema) Entry() (ResponseEntry, error) {
	kinds, err := fieldKinds(s.Name, s.Fields)
	if err != nil {
		return ResponseEntry{}, err
	}
	required := slices.Clone(s.Required)
	accepts := acceptSet(s.Accepts)

	e := ResponseEntry{
		Name: s.Name,
		Kind: s.kind,
		Create: func(resp *model.Response, attrs *dict.Dictionary) error {
			if tok, ok := attrs.GetString(NextPageAttr); ok {
				resp.SetNextPageToken(tok)
			}
			meta := resp.Metadata()
			return populate(attrs, kinds, required, func(key string, v dict.Value) error {
				if key == NextPageAttr {
					return nil
				}
				meta.Put(metadataKey(key), v)
				return nil
			})
		},
	}
	if len(accepts) > 0 {
		e.Extend = func(resp *model.Response, child *model.Result) bool {
			if _, ok := accepts[child.Name()]; !ok {
				return false
			}
			return resp.AddResult(child, true) == nil
		}
	}
	return e, nil
}

func (s ResponseSchema) mustEntry() ResponseEntry {
	e, err := s.Entry()
	if err != nil {
		panic(err)
	}
	return e
}

func metadataKey(attr string) string {
	switch attr {
	case "Total":
		return model.MetaTotal
	case "Offset":
		return model.MetaOffset
	}
	return attr
}

func fieldKinds(name string, fields map[string]string) (map[string]dict.Kind, error) {
	kinds := make(map[string]dict.Kind, len(fields))
	for field, kindName := range fields {
		k, err := dict.ParseKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("%w: %q field %q: %w", ErrInvalidArgument, name, field, err)
		}
		kinds[field] = k
	}
	return kinds, nil
}

func acceptSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// populate copies attrs in document order, parsing declared typed fields.
func populate(attrs *dict.Dictionary, kinds map[string]dict.Kind, required []string, set func(string, dict.Value) error) error {
	for _, key := range required {
		if _, ok := attrs.Get(key); !ok {
			return fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	var err error
	attrs.Range(func(key string, v dict.Value) bool {
		if k, ok := kinds[key]; ok && k != v.Kind {
			parsed, perr := dict.ParseValue(k, v.Text())
			if perr != nil {
				err = fmt.Errorf("%w: %s: %w", ErrInvalidField, key, perr)
				return false
			}
			v = parsed
		}
		if serr := set(key, v); serr != nil {
			err = serr
			return false
		}
		return true
	})
	return err
}
