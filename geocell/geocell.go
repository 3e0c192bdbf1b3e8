// Package geocell derives location ids for reports submitted with raw
// coordinates instead of an explicit location id. Reports within the same S2
// cell share an id and therefore aggregate together.
package geocell

import (
	"github.com/golang/geo/s2"
)

// Level 16 cells are roughly street-segment sized (on the order of 100m
// across), fine enough to keep separate road sections apart and coarse
// enough that repeat reports of the same spot land in the same cell.
const cellLevel = 16

// LocationID returns the token of the level-16 S2 cell containing the point.
func LocationID(lat, lng float64) string {
	cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lng))
	return cell.Parent(cellLevel).ToToken()
}
