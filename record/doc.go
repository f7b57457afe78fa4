// Package record defines the unit of data flowing through a pipeline: an
// ordered mapping from string keys to JSON-compatible values.
//
// Key order is preserved from the input line, and keys added later are
// appended in the order they were first set. Records expose no delete
// operation; operators only add or overwrite keys.
package record
