// Package dataset encodes sessions to their published files and reads them
// back for validation.
//
// Files ending in .jsonl hold one compact session object per line; files
// ending in .json hold an indented array. Writes are skipped when the encoded
// content equals what is already on disk, and otherwise go through a locked
// temp-file rename so readers never observe a partial dataset.
package dataset
