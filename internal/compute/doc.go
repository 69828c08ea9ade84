// Package compute provides the execution backends of the layout step.
//
// The package selects the best available backend once, at construction:
//
//   - Parallel grid: data-parallel phases over worker goroutines with
//     grid-bucketed repulsion, O(n·k) per step
//   - Serial brute force: single-threaded fallback with all-pairs
//     repulsion, O(n²) per step
//
// # Pipeline
//
// A backend exposes its step as an ordered list of [Phase] values. Each
// phase joins all of its workers before returning, so the next phase never
// observes partial state:
//
//	backend, err := compute.AutoSelectBackend(compute.DefaultOptions())
//	if err != nil {
//	    // running on the serial fallback
//	}
//	err = compute.RunPhases(backend, &compute.Frame{Nodes: nodes, Edges: edges, Params: p}, nil)
//
// Both backends apply the same force laws; only their cost differs.
package compute
