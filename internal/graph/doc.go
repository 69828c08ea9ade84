// Package graph defines the data model shared by every stage of the layout
// engine.
//
// The physics core works on dense slices:
//
//   - [Node]: position, velocity, force accumulator, mass and a visual payload
//   - [Edge]: two endpoint indices into the node slice plus a visual payload
//   - [Params]: the immutable per-step tunables
//
// Node identity is the slice index. Indices are only stable within a single
// step; callers replace the node and edge slices wholesale between steps.
//
// # Flat buffers
//
// Host UI layers hand graphs over as flat float32 buffers with a fixed
// stride, 7 values per node and 9 per edge:
//
//	nodes, _ := graph.DecodeNodes(nodeBuf)
//	edges, _ := graph.DecodeEdges(edgeBuf, nodes)
//	out := graph.EncodeNodes(nodes)
package graph
