// Package occupancy provides the probabilistic occupancy grid the navigator checks
// plans against.
//
// Cells hold an occupancy percentage in [0, 100] or -1 when unknown. A point is free
// when the combined probability of the square window of cells around it stays below the
// grid threshold; unknown cells count as free.
package occupancy
