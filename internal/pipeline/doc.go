// Package pipeline runs the stages of a link check in sequence.
//
// A check is a fixed sequence of steps over one model.Run: discover the
// documents under the root, classify their references, resolve the local
// ones, and optionally probe a sample of external URLs. Each step is a Step
// that reads what the earlier steps stored in the run and adds its own
// results. Steps are sequential; only the probe step issues concurrent work
// internally.
//
// Cancellation is checked between steps. A run cancelled before probing
// starts yields an error and no report. The probe step absorbs cancellation
// and marks the run as interrupted, so a report over the gathered results
// can still be written.
package pipeline
