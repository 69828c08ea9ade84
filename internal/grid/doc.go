// Package grid implements the uniform spatial index used to bound the cost
// of repulsion.
//
// A fixed square domain is divided into Size×Size cells. Each step the grid
// is cleared, every node is assigned to the cell containing its position,
// and the per-cell index lists are sealed into a deterministic order:
//
//	g.ClearAll()
//	g.Assign(nodes, 0, len(nodes))
//	g.Seal(0, g.Cells())
//
// Cells have a fixed capacity. Nodes arriving at a full cell are counted in
// [Grid.Overflow] but not recorded, which lowers repulsion accuracy for that
// cell without failing the step. Raise the capacity when Overflow is
// routinely non-zero.
package grid
