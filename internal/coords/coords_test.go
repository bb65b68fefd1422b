package coords

import "testing"

func TestFloorDivNegative(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{-1, 16, -1},
		{-16, 16, -1},
		{-17, 16, -2},
		{15, 16, 0},
		{16, 16, 1},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.want {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFloorModAlwaysNonNegative(t *testing.T) {
	for a := -40; a <= 40; a++ {
		m := FloorMod(a, 16)
		if m < 0 || m >= 16 {
			t.Fatalf("FloorMod(%d,16) = %d out of range", a, m)
		}
	}
}

// Property 1: coordinate round-trip, with Z inversion preserved.
func TestModelToWorldRoundTrip(t *testing.T) {
	originX, originZ := 1000.0, 2000.0
	for _, p := range [][2]float64{{0, 0}, {5, -3}, {-40, 17}, {1000, 2000}} {
		x, z := ModelToWorld(originX+p[0], originZ+p[1], originX, originZ)
		wantX := int(p[0])
		wantZ := -int(p[1])
		if x != wantX || z != wantZ {
			t.Errorf("ModelToWorld offset %v => (%d,%d), want (%d,%d)", p, x, z, wantX, wantZ)
		}
	}
}

func TestWorldToChunkToRegion(t *testing.T) {
	cx, cz := WorldToChunk(-17, 31)
	if cx != -2 || cz != 1 {
		t.Fatalf("WorldToChunk(-17,31) = (%d,%d), want (-2,1)", cx, cz)
	}
	rx, rz := ChunkToRegion(cx, cz)
	if rx != -1 || rz != 0 {
		t.Fatalf("ChunkToRegion(%d,%d) = (%d,%d), want (-1,0)", cx, cz, rx, rz)
	}
}

func TestElevationToYClamps(t *testing.T) {
	if y := ElevationToY(100.0); y != -1948 {
		t.Fatalf("ElevationToY(100) = %d, want -1948", y)
	}
	if y := ElevationToY(100000); y != MaxWorldY {
		t.Fatalf("ElevationToY huge should clamp to MaxWorldY, got %d", y)
	}
	if y := ElevationToY(-100000); y != MinWorldY {
		t.Fatalf("ElevationToY tiny should clamp to MinWorldY, got %d", y)
	}
}

// S6 scenario from spec.md: meta origin (1000.0, 2000.0); locate . 1005.0
// 1997.0 50.0 => x=5 z=3 cx=0 cz=0 y=-1998.
func TestLocateScenarioS6(t *testing.T) {
	h := 50.0
	loc := LocateFromModel(1005.0, 1997.0, 1000.0, 2000.0, &h)
	if loc.X != 5 || loc.Z != 3 || loc.CX != 0 || loc.CZ != 0 {
		t.Fatalf("unexpected locate result: %+v", loc)
	}
	if loc.Y == nil || *loc.Y != -1998 {
		t.Fatalf("unexpected Y: %+v", loc.Y)
	}
}
