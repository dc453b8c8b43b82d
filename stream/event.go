package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/searchtree/dict"
)

// EventKind identifies a token-stream event.
type EventKind uint8

const (
	// EventStartElement opens an element.
	EventStartElement EventKind = iota + 1
	// EventEndElement closes an element.
	EventEndElement
	// EventError reports malformed input.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "start"
	case EventEndElement:
		return "end"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Attr is one element attribute.
type Attr struct {
	Name  string
	Value string
}

// Event is one token delivered to the parse engine.
type Event struct {
	Kind   EventKind
	Name   string
	Attrs  []Attr
	Err    error
	Line   int
	Column int
}

func (e Event) String() string {
	switch e.Kind {
	case EventStartElement:
		return fmt.Sprintf("<%s>", e.Name)
	case EventEndElement:
		return fmt.Sprintf("</%s>", e.Name)
	default:
		return fmt.Sprintf("error(%v)", e.Err)
	}
}

// Source yields events in document order. Next returns io.EOF after the last event.
type Source interface {
	Next() (Event, error)
}

// Attrs builds the attribute dictionary handed to creation callbacks.
// Duplicate names keep the last value at the first position.
func Attrs(attrs []Attr) *dict.Dictionary {
	d := dict.New(len(attrs))
	for _, a := range attrs {
		d.Put(a.Name, dict.String(a.Value))
	}
	return d
}

// Start returns a start-element event. kv alternates attribute names and values.
func Start(name string, kv ...string) Event {
	e := Event{Kind: EventStartElement, Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs = append(e.Attrs, Attr{Name: kv[i], Value: kv[i+1]})
	}
	return e
}

// End returns an end-element event.
func End(name string) Event {
	return Event{Kind: EventEndElement, Name: name}
}

// Fail returns an error event.
func Fail(err error) Event {
	return Event{Kind: EventError, Err: err}
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []Event
	pos    int
}

// NewSliceSource returns a Source over events.
func NewSliceSource(events ...Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next implements Source.
func (s *SliceSource) Next() (Event, error) {
	if s.pos >= len(s.events) {
		return Event{}, io.EOF
	}
	e := s.events[s.pos]
	s.pos++
	return e, nil
}

// Collect drains src into a slice. Replies recorded this way can be replayed
// with NewSliceSource.
func Collect(src Source) ([]Event, error) {
	var out []Event
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}
