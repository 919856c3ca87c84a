package sheet

import "strings"

// Column names, case-sensitive, in sheet order (range A:D).
const (
	ColumnPage        = "Page"
	ColumnSong        = "Song"
	ColumnArtist      = "Artist"
	ColumnRequestedBy = "Requested By"
)

// Header is the ordered list of column names from a worksheet's first row.
type Header []string

// DefaultHeader is the layout every session worksheet is expected to use.
var DefaultHeader = Header{ColumnPage, ColumnSong, ColumnArtist, ColumnRequestedBy}

// RawRow is one row of cell strings, positionally aligned to a Header.
type RawRow []string

// Pad returns r right-padded with empty cells up to n. Longer rows are
// returned unchanged.
func (r RawRow) Pad(n int) RawRow {
	if len(r) >= n {
		return r
	}
	out := make(RawRow, n)
	copy(out, r)
	return out
}

// Row is the typed view of a data row. Only the four known columns are
// kept; all values are trimmed.
type Row struct {
	Page        string
	Song        string
	Artist      string
	RequestedBy RequestCode
}

// IsEmpty reports whether the row carries no page, song or artist.
func (r Row) IsEmpty() bool {
	return r.Page == "" && r.Song == "" && r.Artist == ""
}

// ParseRow zips the padded raw row with the header. Cells past the header
// length and columns with unknown names are ignored; when a column name
// repeats, the last one wins.
func ParseRow(header Header, raw RawRow) Row {
	padded := raw.Pad(len(header))
	var row Row
	for i, name := range header {
		value := strings.TrimSpace(padded[i])
		switch name {
		case ColumnPage:
			row.Page = value
		case ColumnSong:
			row.Song = value
		case ColumnArtist:
			row.Artist = value
		case ColumnRequestedBy:
			row.RequestedBy = ParseRequestCode(value)
		}
	}
	return row
}
