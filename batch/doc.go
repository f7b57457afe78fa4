// Package batch runs one Pipeline over a stream of records with a fixed
// number of workers.
//
// Every record read from the source yields exactly one Outcome, handed to
// the emit callback one at a time. A failing record never affects another.
// When the run deadline passes or the caller cancels, records that have not
// started are reported as timeout failures while the source is drained, so
// the outcome count always equals the input count.
package batch
