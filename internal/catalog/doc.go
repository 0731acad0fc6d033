// Package catalog defines the product model, the built-in demo catalog, and the
// pure search/category derivation used by the product grid.
//
// Filtering is side-effect free: Filter and Categories never modify their input and
// return the same result for the same arguments, so callers recompute the view on every
// render instead of caching it. Categories always starts with the "All" sentinel and
// lists each category present in the current products exactly once; it shrinks as soon
// as the last product of a category is gone.
package catalog
