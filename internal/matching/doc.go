// Package matching resolves free-text song/artist pairs to canonical catalog
// entries by approximate string comparison.
//
// The Matcher scores the normalized "song - artist" key of a query against
// every catalog key, keeps the single best entry (the first one on ties), and
// accepts it only when the score reaches the configured threshold. It never
// mutates the catalog and is safe for concurrent use.
package matching
