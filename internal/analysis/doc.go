// Package analysis implements the lead/lag correlation engine: frequency
// alignment of two series onto one period grid, shifted-copy generation for
// every candidate lead/lag offset, whole-sample R-squared scoring with
// best-shift selection, and rolling plus cumulative correlation matrices.
//
// All entities produced here are created per run and immutable once
// constructed; per-shift computations are independent and run on a bounded
// worker pool.
package analysis
