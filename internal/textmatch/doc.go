// Package textmatch holds the string primitives shared by catalog indexing and
// matching: the "song - artist" comparison key, the normalizers applied to
// both sides before comparison, and the Ratcliff-Obershelp similarity ratio.
//
// The default normalizer is deliberately minimal (trim and lower-case). Any
// broader folding changes match outcomes for existing data, so it is exposed
// as a separately named normalizer that must be selected explicitly.
package textmatch
