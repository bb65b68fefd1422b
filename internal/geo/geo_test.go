package geo

import "testing"

func TestLambert93RoundTrip(t *testing.T) {
	cases := [][2]float64{
		{48.8566, 2.3522},  // Paris
		{45.7640, 4.8357},  // Lyon
		{43.2965, 5.3698},  // Marseille
		{50.6292, 3.0573},  // Lille
	}
	for _, c := range cases {
		x, y := LatLonToLambert93(c[0], c[1])
		lat, lon := Lambert93ToLatLon(x, y)
		if abs(lat-c[0]) > 1e-6 || abs(lon-c[1]) > 1e-6 {
			t.Fatalf("round trip for (%v,%v) got (%v,%v) via (%v,%v)", c[0], c[1], lat, lon, x, y)
		}
	}
}

func TestBoundingBoxFromWorldAppliesZInversionAndMargin(t *testing.T) {
	box := BoundingBoxFromWorld(0, 100, 0, 50, 1000, 2000, 10)
	if box.MinX != 990 || box.MaxX != 1110 {
		t.Fatalf("unexpected X bounds: %+v", box)
	}
	if box.MinZ != 1940 || box.MaxZ != 2010 {
		t.Fatalf("unexpected Z bounds: %+v", box)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
