// Package sheets implements records.Backend on a Google Sheets spreadsheet.
//
// Each table is a tab of the configured spreadsheet. Rows are read with
// values.get over the whole tab, overwritten with values.update at
// 'Tab'!A{pos} and appended with values.append using INSERT_ROWS. Values
// are written RAW so the sheet never reinterprets user input as formulas.
//
// The spreadsheet must be shared with the service account. A 403 from the
// API surfaces as records.ErrAccessDenied and a missing tab as
// records.ErrTableNotFound.
package sheets
