// Package model defines the arena-owned object model produced by the parser.
//
// # Ownership
//
// A Response owns everything reachable from it:
//
//   - child responses (Bundle only)
//   - every Result allocated through NewResult, attached or not
//   - all auxiliary memory handed out by Allocate/AllocString
//
// Response.Free releases the whole tree in one call. A Result only keeps a
// weak back-reference to its owner, so the ownership graph is a strict tree.
//
// # Lists
//
// Results are kept in two ordered lists: the visible list (search hits) and
// the internal list (common sub-structures such as thumbnails that were not
// merged into a particular result). Common kinds never enter the visible list.
//
// Neither type is safe for concurrent mutation.
package model
