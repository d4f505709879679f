// Package solver decides whether a rolling-block level can be finished.
//
// The search is a breadth-first walk over block positions. A position is the
// canonical engine.Block; two positions are the same node when they cover the
// same cells. Rolls that would rest the block on a hole or off the board are
// dropped as edges rather than treated as a losing state, since only
// reachability matters here.
//
// Usage:
//
//	grid, _ := engine.ParseLayout([]string{"NNNG"})
//	res, err := solver.Check(grid, engine.Coord{X: 0, Z: 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Solvable, engine.DirectionNames(res.Path)) // true [right right]
//
// Because BFS expands positions in increasing move count, the returned path
// is always a shortest one. Directions are expanded in engine.Directions order
// so repeated calls on the same grid return the same path.
package solver
