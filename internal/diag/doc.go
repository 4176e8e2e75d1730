// Package diag defines the diagnostic model shared by the scenario loader,
// the region checker and the driver.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form (codes.go), a short Message, the Primary span and optional
// Notes pointing at related locations.
//
// Producers emit through a Reporter so that storage stays decoupled.
// BagReporter collects into a Bag and DedupReporter drops repeats. Each
// file of a run gets its own Bag, so reporters need no locking.
//
// SevFatal is reserved for internal invariant violations in the region
// checker; the function being checked is abandoned after one is reported.
//
// Package diag does no terminal IO. FormatShort gives a stable single-line
// rendering used by tests and by the driver's plain output.
package diag
