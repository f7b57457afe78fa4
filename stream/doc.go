// Package stream provides pull-based iterators used to feed records lazily
// from sources into the batch executor.
//
// An Iterator yields values one at a time through Next and must be closed
// when the consumer is done. Combinators wrap iterators without reading
// ahead, so memory stays bounded by what the consumer holds.
package stream
