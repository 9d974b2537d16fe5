// Package render presents plans to people: an HTML report for the upload
// page and bordered tables for terminals.
package render
