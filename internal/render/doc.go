// Package render turns a composed document tree into bytes.
//
// Two renderers are provided. PDF lays the tree out on fixed A4 pages and
// leaves pagination to fpdf; the issuer footer is drawn on every page in the
// region reserved by the automatic page break. Text produces a plain layout
// for terminal previews.
//
// Renderers are pure: the same tree yields the same bytes.
package render
