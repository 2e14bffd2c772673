package settings

import (
	"math"
	"strconv"
)

// Belt holds the resolved settings the job pipeline works with. Angles are in
// radians; flows are percentages already scaled by sin(GantryAngle).
type Belt struct {
	GantryAngle  float64
	MachineDepth float64

	Raft          bool
	RaftMargin    float64
	RaftThickness float64
	RaftGap       float64
	RaftSpeed     float64
	RaftFlow      float64

	BeltWall      bool
	BeltWallSpeed float64
	BeltWallFlow  float64

	Support                  bool
	SupportAngle             float64
	SupportGantryBias        float64
	SupportMinimumIslandArea float64

	WallLineWidth0 float64
	LayerHeight    float64
	LayerHeight0   float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// ResolveBelt reads the belt settings from s.
func ResolveBelt(s *Store) Belt {
	angle := radians(s.Float("blackbelt_gantry_angle"))
	sin := math.Sin(angle)
	return Belt{
		GantryAngle:  angle,
		MachineDepth: s.Float("machine_depth"),

		Raft:          s.Bool("blackbelt_raft"),
		RaftMargin:    s.Float("blackbelt_raft_margin"),
		RaftThickness: s.Float("blackbelt_raft_thickness"),
		RaftGap:       s.Float("blackbelt_raft_gap"),
		RaftSpeed:     s.Float("blackbelt_raft_speed"),
		RaftFlow:      s.Float("blackbelt_raft_flow") * sin,

		BeltWall:      s.Bool("blackbelt_belt_wall_enabled"),
		BeltWallSpeed: s.Float("blackbelt_belt_wall_speed"),
		BeltWallFlow:  s.Float("blackbelt_belt_wall_flow") * sin,

		Support:                  s.Bool("support_enable"),
		SupportAngle:             s.Float("support_angle"),
		SupportGantryBias:        radians(s.Float("blackbelt_support_gantry_angle_bias")),
		SupportMinimumIslandArea: s.Float("blackbelt_support_minimum_island_area"),

		WallLineWidth0: s.Float("wall_line_width_0"),
		LayerHeight:    s.Float("layer_height"),
		LayerHeight0:   s.Float("layer_height_0"),
	}
}

// AdjustForEngine rewrites the engine settings for slicing pretransformed
// meshes: the engine must not add its own support or adhesion, layers are
// stretched along the gantry and the flow is reduced to match.
func (s *Store) AdjustForEngine(b Belt) {
	sin := math.Sin(b.GantryAngle)

	s.Set("support_enable", BoolValue(false))
	s.Set("adhesion_type", StringValue("none"))
	for _, key := range []string{"layer_height", "layer_height_0"} {
		s.Set(key, FloatValue(s.Float(key)/sin))
	}
	for _, key := range []string{"material_flow", "prime_tower_flow"} {
		s.Set(key, FloatValue(s.Float(key)*sin))
	}
}

// RaftMeshSettings are the per-mesh overrides for the raft.
func (b Belt) RaftMeshSettings() []Setting {
	return []Setting{
		{Key: "wall_line_count", Value: "99999999"},
		{Key: "speed_wall_0", Value: formatFloat(b.RaftSpeed)},
		{Key: "speed_wall_x", Value: formatFloat(b.RaftSpeed)},
		{Key: "material_flow", Value: formatFloat(b.RaftFlow)},
	}
}

// SupportMeshSettings mark a mesh as support that is not dropped down by the
// engine; it already reaches the belt.
func SupportMeshSettings() []Setting {
	return []Setting{
		{Key: "support_mesh", Value: "true"},
		{Key: "support_mesh_drop_down", Value: "false"},
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
