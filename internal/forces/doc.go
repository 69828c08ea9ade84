// Package forces implements the force laws of the layout: bounded-radius
// inverse-square repulsion between nodes and Hookean springs along edges.
//
// Each law has a range form that writes only the accumulators of nodes
// [start, end), which is what the parallel pipeline splits across workers,
// and a whole-graph form for the single-threaded fallback:
//
//	RepelGrid(nodes, g, p, start, end)   // 3×3 grid neighbourhood
//	RepelBrute(nodes, p)                 // all pairs
//	SpringsAt(nodes, edges, adj, p, start, end)
//	Springs(nodes, edges, p)
//
// Pairs closer than [MinSeparation] contribute zero force, so coincident
// nodes never produce NaN or Inf.
package forces
