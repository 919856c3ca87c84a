// Package session turns one worksheet grid into a Session: a dated, ordered
// list of song and break events.
//
// The Extractor owns title parsing, row interpretation and the break policy
// that decides when a blank row marks the interval and when it marks the end
// of the night's log. Sessions serialize to the fixed dataset schema through
// the JSON codec in this package, and ValidateRecord checks decoded records
// against that schema.
package session
