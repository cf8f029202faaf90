// Package vectors builds a navigable hierarchy over a dataset's vector
// catalog. Vectors form a tree through parent references; the Index
// resolves ancestor chains, direct children, and scored label searches,
// memoizing the parsed catalog per dataset.
package vectors
