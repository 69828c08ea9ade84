// Package engine runs one layout step at a time over a node and edge set.
//
// An Engine selects its compute backend once, at construction, and then
// drives the backend's phases in order for every step: clear-grid,
// assign-to-grid, repulsion, spring, integrate. No grid or force state
// survives a step.
//
// Two surfaces are offered. Step and TryStep are pure with respect to the
// caller's slices: they return a new node slice and never modify the input.
// Replace, Tick and Nodes keep an owned copy of the graph for consumers
// that feed the engine once and poll it every frame.
//
// Failures never corrupt state. A step that cannot start is skipped and a
// step that fails part way is abandoned; in both cases the input nodes are
// returned unchanged.
package engine
