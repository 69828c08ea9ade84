// Package metrics measures simulation runs: scalar run metrics that end up
// in stored results, and prometheus collectors fed by the engine.
package metrics
