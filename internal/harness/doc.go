// Package harness runs scenario files against the draft model and the
// dispatch pipeline.
//
// A scenario is a list of operator steps (edit the draft, dispatch it) run
// against an in-memory database, an in-memory blob store and a frozen clock,
// so the resulting trace is deterministic and can be compared with a golden
// file.
//
// # Scenario Format
//
//	name: desk_local
//	description: "One item, saved locally"
//	steps:
//	  - op: set_recipient
//	    value: Nordby AS
//	  - op: update_item
//	    item: item-1
//	    field: price
//	    value: "100"
//	  - op: remove_item
//	    item: item-1
//	    expect: rejected
//	  - op: dispatch
//	    mode: local
//	assertions:
//	  - type: totals
//	    expect: { netto: "100.00", vat: "25.00", total: "125.00" }
//	  - type: deliveries
//	    mode: local
//	    count: 1
//
// Item ids are assigned in order: the blank item of a fresh draft is
// "item-1", the next added item "item-2", and so on.
//
// # Outcomes
//
// Every step records an outcome: "ok", or the kind of error it produced
// ("rejected", "not_found", "unknown_field", "composition", "busy", or
// "failed:<step>" for a dispatch step failure). A step without expect must
// succeed.
//
// # Failure Injection
//
// A dispatch step may set fail to one of upload, link, open or save. The
// collaborator for that step fails for this dispatch only.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of the trace with
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
