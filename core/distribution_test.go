package core

import (
	"testing"

	"github.com/solarlab/pvcompare/schema"
	"github.com/stretchr/testify/assert"
)

func TestOrientationGroup(t *testing.T) {
	tests := map[float64]string{
		0:     NorthGroup,
		44.9:  NorthGroup,
		45:    EastGroup,
		90:    EastGroup,
		134.9: EastGroup,
		135:   SouthGroup,
		180:   SouthGroup,
		225:   SouthGroup,
		225.1: WestGroup,
		315:   WestGroup,
		315.1: NorthGroup,
		359:   NorthGroup,
	}
	for azimuth, want := range tests {
		assert.Equal(t, want, OrientationGroup(azimuth), "azimuth %v", azimuth)
	}
}

func TestTiltBand(t *testing.T) {
	tests := map[float64]string{
		0:    TiltFlat,
		19.9: TiltFlat,
		20:   TiltLow,
		39.9: TiltLow,
		40:   TiltMedium,
		60:   TiltMedium,
		60.1: TiltSteep,
		90:   TiltSteep,
	}
	for tilt, want := range tests {
		assert.Equal(t, want, TiltBand(tilt), "tilt %v", tilt)
	}
}

func TestDescribeFleet(t *testing.T) {
	dist := DescribeFleet([]schema.SystemRecord{
		{ID: "1", Azimuth: 180, Tilt: 30, Capacity: 5000},
		{ID: "2", Azimuth: 90, Tilt: 45, Capacity: 3000},
		{ID: "3", Azimuth: 170, Tilt: 10, Capacity: 4000},
	})
	assert.Equal(t, 3, dist.Total)
	assert.InDelta(t, 4000.0, dist.MeanCapacity, 1e-9)
	assert.Equal(t, []schema.GroupCount{
		{Group: EastGroup, Count: 1}, {Group: NorthGroup, Count: 0},
		{Group: SouthGroup, Count: 2}, {Group: WestGroup, Count: 0},
	}, dist.Orientation)
	assert.Equal(t, []schema.GroupCount{
		{Group: TiltFlat, Count: 1}, {Group: TiltLow, Count: 1},
		{Group: TiltMedium, Count: 1}, {Group: TiltSteep, Count: 0},
	}, dist.Tilt)

	empty := DescribeFleet(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0.0, empty.MeanCapacity)
	assert.Len(t, empty.Orientation, 4)
}
