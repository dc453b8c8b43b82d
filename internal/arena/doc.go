// Package arena provides the region allocator owned by every parsed response.
//
// All auxiliary buffers carved while a reply is parsed (strings, thumbnails,
// scratch slices) come from one Arena and are released together by Free.
//
// # Features
//
//   - Chunked bump allocation, chunks are acquired lazily
//   - Per-call ceiling to bound run-away requests
//   - Optional MemoryAcquirer to account chunks against a shared budget
//   - Dedicated chunks for requests larger than the chunk size
//
// # Safety
//
// All methods return errors instead of panicking. Slices handed out by an
// Arena must not be used after Free.
package arena
