package core

import (
	"github.com/solarlab/pvcompare/schema"
	"gonum.org/v1/gonum/stat"
)

// Orientation groups by azimuth in degrees clockwise from north.
const (
	EastGroup  = "East"
	NorthGroup = "North"
	SouthGroup = "South"
	WestGroup  = "West"
)

// Tilt bands in degrees from horizontal.
const (
	TiltFlat   = "< 20"
	TiltLow    = "20 - 40"
	TiltMedium = "40 - 60"
	TiltSteep  = "> 60"
)

var (
	orientationGroups = []string{EastGroup, NorthGroup, SouthGroup, WestGroup}
	tiltBands         = []string{TiltFlat, TiltLow, TiltMedium, TiltSteep}
)

// OrientationGroup maps an azimuth to its compass group.
// South covers 135..225 inclusive, East [45, 135), West (225, 315], North the rest.
func OrientationGroup(azimuth float64) string {
	switch {
	case azimuth >= 135 && azimuth <= 225:
		return SouthGroup
	case azimuth >= 45 && azimuth < 135:
		return EastGroup
	case azimuth > 225 && azimuth <= 315:
		return WestGroup
	default:
		return NorthGroup
	}
}

// TiltBand maps a tilt angle to its band; 40 and 60 both fall in the 40 - 60 band.
func TiltBand(tilt float64) string {
	switch {
	case tilt < 20:
		return TiltFlat
	case tilt < 40:
		return TiltLow
	case tilt <= 60:
		return TiltMedium
	default:
		return TiltSteep
	}
}

// DescribeFleet counts systems per orientation group and tilt band and reports the mean capacity.
func DescribeFleet(systems []schema.SystemRecord) schema.FleetDistribution {
	orientation := make(map[string]int)
	tilt := make(map[string]int)
	capacities := make([]float64, 0, len(systems))
	for _, s := range systems {
		orientation[OrientationGroup(s.Azimuth)]++
		tilt[TiltBand(s.Tilt)]++
		capacities = append(capacities, s.Capacity)
	}

	dist := schema.FleetDistribution{Total: len(systems)}
	for _, g := range orientationGroups {
		dist.Orientation = append(dist.Orientation, schema.GroupCount{Group: g, Count: orientation[g]})
	}
	for _, b := range tiltBands {
		dist.Tilt = append(dist.Tilt, schema.GroupCount{Group: b, Count: tilt[b]})
	}
	if len(capacities) > 0 {
		dist.MeanCapacity = stat.Mean(capacities, nil)
	}
	return dist
}
