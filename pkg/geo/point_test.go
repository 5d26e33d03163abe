package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMetersZero(t *testing.T) {
	p := Point{Latitude: 40.0, Longitude: -75.0}
	assert.Zero(t, DistanceMeters(p, p))
}

func TestDistanceMetersKnown(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}

	d := DistanceMeters(a, b)
	assert.InDelta(t, 111195, d, 50)
}

func TestDistanceMetersSymmetric(t *testing.T) {
	a := Point{Latitude: 40.7128, Longitude: -74.0060}
	b := Point{Latitude: 39.9526, Longitude: -75.1652}

	assert.InDelta(t, DistanceMeters(a, b), DistanceMeters(b, a), 1e-9)
}

func TestDistanceYards(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}

	assert.InDelta(t, DistanceMeters(a, b)*MetersToYards, DistanceYards(a, b), 1e-9)
}
