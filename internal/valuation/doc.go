// Package valuation provides the data model for valuer.
//
// This package contains the draft types, the totals arithmetic, canonical
// JSON serialization and the snapshot schema. All other internal packages
// import valuation; valuation imports nothing internal.
//
// Key design constraints:
//   - Prices are decimal strings, never floats; arithmetic uses shopspring/decimal
//   - Totals are derived on read from the items and never stored
//   - Every mutation produces a new Items slice (copy-on-write); callers never
//     mutate a Request they did not build
//   - All JSON tags use snake_case
package valuation
