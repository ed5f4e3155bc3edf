// Package compose turns a valuation draft into a document tree.
//
// Compose is a pure function: the tree depends only on the draft and the
// static issuer Profile. It carries no timestamps or ids, so two calls with
// equal input produce equal trees and equal fingerprints.
//
// Layout order is fixed: header, one section per item, totals, footer.
package compose
