// Package frame provides the typed tabular model shared by every census
// payload, plus the response normalizer that converts raw CSV/JSON into it.
//
// Cells are a three-state tagged union (null, text, number). Normalization
// trims incidental header whitespace, replaces Statistics Canada NA
// sentinels ("x", "F", "...", "-") in numeric columns with typed nulls, and
// coerces the remaining count/measurement cells to numbers. A cell that
// fails coercion becomes null; a column never aborts wholesale.
//
// Normalize is idempotent: re-normalizing an already-normalized table is a
// no-op. That property lets the assembler normalize defensively without
// tracking payload provenance.
package frame
