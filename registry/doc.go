// Package registry maps element names to the callbacks that build and extend
// responses and results.
//
// Built-in kinds (WebResult, ImageResult, Thumbnail, Web, Image, ...) are
// declared with the same schema machinery that custom registration data uses:
//
//	results:
//	  - name: ProductResult
//	    fields: {Price: float, Stock: int}
//	    required: [Title]
//	    accepts: [Thumbnail]
//	  - name: Badge
//	    common: true
//	responses:
//	  - name: Shopping
//	    fields: {Total: int}
//	    accepts: [Badge]
//
// Ordinary result names end with "Result". Common kinds are embeddable in any
// result and never use that suffix. "Query" is reserved.
//
// Use New for an isolated registry and Default for the shared process-wide one.
package registry
