package parser

// SkipReason explains why an element was dropped without failing the parse.
type SkipReason uint8

const (
	// SkipUnknownResult: no registration for a result element name.
	SkipUnknownResult SkipReason = iota + 1
	// SkipNoResponse: a result arrived while no non-bundle response was open.
	SkipNoResponse
	// SkipAllocation: the result could not be allocated.
	SkipAllocation
	// SkipCreateFailed: the creation callback returned an error.
	SkipCreateFailed
	// SkipUnknownElement: an unregistered element inside an open result.
	SkipUnknownElement
)

func (r SkipReason) String() string {
	switch r {
	case SkipUnknownResult:
		return "unknown_result"
	case SkipNoResponse:
		return "no_response"
	case SkipAllocation:
		return "allocation"
	case SkipCreateFailed:
		return "create_failed"
	case SkipUnknownElement:
		return "unknown_element"
	default:
		return "unknown"
	}
}

// Observer is notified about recoverable conditions during a parse.
// Calls happen synchronously on the parsing goroutine.
type Observer interface {
	// ResultSkipped is called when an element is dropped. err may be nil.
	ResultSkipped(name string, reason SkipReason, err error)
	// ResultDiscarded is called when an extension callback declines a result.
	ResultDiscarded(name, target string)
}

type noopObserver struct{}

func (noopObserver) ResultSkipped(string, SkipReason, error) {}
func (noopObserver) ResultDiscarded(string, string)          {}
