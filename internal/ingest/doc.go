// Package ingest reads order sheets (XLSX workbooks or CSV files) and maps
// their rows into validated batching.Order values. Only the first worksheet
// of a workbook is read and its first non-blank row is the header.
package ingest
