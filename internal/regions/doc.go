// Package regions implements the region operations of the checker:
// substituting regions into types (Apply), discovering bound regions in
// signatures (Collect), instantiating signatures with fresh inference
// variables (Instantiate) and computing the region of a borrowed
// expression (Resolver.RegionOf).
//
// Every operation is a function of its explicit inputs. The only shared
// mutable resource is the VarAllocator behind FunctionContext.FreshRegionVar.
// Internal invariant violations are reported through
// FunctionContext.Abort and surface as *AbortError.
package regions
