// Package dispatch turns a draft into a delivered document.
//
// A dispatch is a strictly ordered chain of fallible steps that stops at the
// first failure:
//
//	compose -> render -> local:  spool -> save -> release spool
//	                  -> remote: upload -> shareable URL -> summary -> compose URL -> open
//
// Only one dispatch may be outstanding per Dispatcher. Once a path has
// started it runs to completion or failure; cancellation of the caller's
// context is ignored. A completed upload is never rolled back, so a failure
// while fetching the link leaves the uploaded object in place.
package dispatch
