package cfg

import "time"

// RaftArcSegments is the number of straight segments used to approximate a
// quarter circle when the raft footprint is grown with rounded corners.
// Five matches the resolution the belt slicing profiles were tuned against; raising
// it makes the raft outline smoother but adds vertices to every corner.
var RaftArcSegments = 5

// BeltWallMinimumYFactor scales the first wall line width into the Y threshold below
// which a wall segment is considered to be lying on the belt. 0.5 would be exactly
// half a line width, which leaves no tolerance for rounding in the generated gcode.
var BeltWallMinimumYFactor = 0.6

// WeldMaxDistance is the maximum distance between two STL corners that are merged
// into a single mesh vertex on load. STL stores every triangle with its own copy of
// its corners, so without welding the mesh has no connectivity at all.
var WeldMaxDistance = 1e-6

// DegenerateAreaEpsilon is the smallest footprint area (mm²) a raft can be built on.
var DegenerateAreaEpsilon = 1e-9

// EngineTimeout bounds a single run of the external slicing engine.
var EngineTimeout = 30 * time.Minute
