// Package sheet models the worksheet grids exported from the session
// spreadsheets: the fixed column header, raw rows, the typed Row built by
// zipping a padded raw row with the header, and the workbook export format
// read from disk.
package sheet
