// Package pipeline turns a workbook export into canonicalized sessions.
//
// Run fans worksheets out to a bounded worker pool, extracts a session from
// each, and replaces free-text song/artist pairs with their catalog entries
// when the matcher accepts them. A worksheet that cannot be extracted (bad
// title, too few rows, or a panic inside extraction) is recorded as skipped
// and never aborts its siblings. Results are merged in workbook order so the
// same input always yields the same output.
package pipeline
