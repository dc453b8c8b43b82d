// Package parser implements the incremental parse engine.
//
// A Machine consumes start-element, end-element and error events and builds a
// tree of model.Response and model.Result values by looking element names up
// in a registry.Registry. Start elements are classified in this order, first
// match wins:
//
//  1. names ending in "Result" (or "Error") that are not common kinds:
//     ordinary results, appended to the current response's visible list.
//     Failures skip the element and its content.
//  2. "Query": SearchTerms, AlteredQuery and AlterationOverrideQuery are
//     captured as response metadata. A missing SearchTerms is fatal.
//  3. common kinds: array kinds open a frame and are offered to the enclosing
//     result (or the current response) when they close; other kinds are
//     offered immediately. Declined results are released.
//  4. response kinds: the first one becomes the root. A second root turns the
//     root into a synthetic Bundle; later ones are appended to it. Failures
//     are fatal.
//
// A fatal failure, or an error event from the tokenizer, unwinds every open
// element, frees the tree built so far and reports a *ParseError wrapping
// ErrParse. No partial response is ever returned.
package parser
