// Package analyzer provides the flow analysis passes of the reflow engine.
//
// Two independent passes inspect one immutable model.Snapshot:
//   - OverflowPass finds the first page whose trailing content exceeds the
//     height budget and reports a move of its last block to the next page.
//   - UnderflowPass finds the first adjacent page pair where the next page's
//     leading block fits in the spare room of the current page.
//
// Each pass reports at most one violation. Passes are pure functions of
// their input: they never modify the snapshot they receive, so a Dispatcher
// may run them concurrently (Concurrent, built on errgroup) or one after the
// other (Sequential) with identical results.
//
// Both passes share a single Limits value. The overflow tolerance only makes
// sense relative to the underflow comparison, so the two are configured and
// validated together.
package analyzer
