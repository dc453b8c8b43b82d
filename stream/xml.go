package stream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
)

const (
	// DefaultMaxDepth bounds element nesting.
	DefaultMaxDepth = 256
	// DefaultMaxAttrs bounds the attributes of a single element.
	DefaultMaxAttrs = 256
)

// ErrLimitExceeded is reported when the input exceeds a configured limit.
var ErrLimitExceeded = errors.New("xml limit exceeded")

// Limits bounds the structure of an XML reply. Zero values select the defaults.
type Limits struct {
	MaxDepth int `yaml:"max_depth"`
	MaxAttrs int `yaml:"max_attrs"`
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxAttrs <= 0 {
		l.MaxAttrs = DefaultMaxAttrs
	}
	return l
}

// XMLSource tokenizes an XML reply into events.
//
// Element and attribute names are reported without namespace prefixes.
// Character data, comments, processing instructions and namespace
// declarations are dropped. Malformed input yields a single EventError,
// after which Next returns io.EOF.
type XMLSource struct {
	dec    *xml.Decoder
	limits Limits
	depth  int
	done   bool
}

// NewXMLSource returns a Source reading XML from r.
func NewXMLSource(r io.Reader, limits Limits) *XMLSource {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &XMLSource{dec: dec, limits: limits.withDefaults()}
}

// Next implements Source.
func (s *XMLSource) Next() (Event, error) {
	if s.done {
		return Event{}, io.EOF
	}
	for {
		tok, err := s.dec.Token()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return s.fail(err), nil
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.depth++
			if s.depth > s.limits.MaxDepth {
				s.done = true
				return s.fail(fmt.Errorf("%w: depth %d > %d", ErrLimitExceeded, s.depth, s.limits.MaxDepth)), nil
			}
			attrs := make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				attrs = append(attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(attrs) > s.limits.MaxAttrs {
				s.done = true
				return s.fail(fmt.Errorf("%w: %d attributes on %s", ErrLimitExceeded, len(attrs), t.Name.Local)), nil
			}
			return s.event(Event{Kind: EventStartElement, Name: t.Name.Local, Attrs: slices.Clip(attrs)}), nil
		case xml.EndElement:
			s.depth--
			return s.event(Event{Kind: EventEndElement, Name: t.Name.Local}), nil
		}
	}
}

func (s *XMLSource) event(e Event) Event {
	e.Line, e.Column = s.dec.InputPos()
	return e
}

func (s *XMLSource) fail(err error) Event {
	e := s.event(Event{Kind: EventError, Err: err})
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		e.Line = syn.Line
	}
	return e
}
