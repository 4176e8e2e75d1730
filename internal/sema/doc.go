// Package sema hosts the per-function checking context that feeds the
// region operations: scope map, path resolutions, expression types, the
// receiver region and the shared region variable allocator.
package sema
