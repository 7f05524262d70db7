package layout

import (
	"math"
	"testing"
)

func TestCenterLine(t *testing.T) {
	cases := []struct {
		lo, hi, want int
	}{
		{0, 4, 2},
		{0, 3, 2},
		{1, 1, 2},
		{-1, -1, 0},
		{-5, 5, 0},
		{-30, 4, -12},
		{7, 9, 8},
	}
	for _, tc := range cases {
		if got := centerLine(tc.lo, tc.hi); got != tc.want {
			t.Fatalf("centerLine(%d, %d): expected %d, got %d", tc.lo, tc.hi, tc.want, got)
		}
	}
}

func TestStaffStacking(t *testing.T) {
	cfg := DefaultConfig()
	ls := scoreOf(
		pitched("a", 0, "1", 0, 480, 0),
		pitched("b", 0, "1", 480, 480, 4),
		pitched("c", 1, "1", 0, 480, 14),
	)
	staves := buildStaves(ls, cfg)
	if len(staves) != 2 {
		t.Fatalf("expected 2 staves, got %d", len(staves))
	}
	s0, s1 := staves[0], staves[1]
	if s0.Top != cfg.MarginPx {
		t.Fatalf("expected first staff at the margin, got %.1f", s0.Top)
	}
	if s0.VisibleMinZ != -2 || s0.VisibleMaxZ != 6 {
		t.Fatalf("expected visible -2..6, got %d..%d", s0.VisibleMinZ, s0.VisibleMaxZ)
	}
	if s0.LineSpacing != cfg.StaffLineSpacingPx/2 {
		t.Fatalf("expected half a staff space per Z, got %.2f", s0.LineSpacing)
	}
	if got := s1.Top - s0.Bottom; math.Abs(got-cfg.StaffGapPx) > eps {
		t.Fatalf("expected staff gap %.1f, got %.1f", cfg.StaffGapPx, got)
	}
	if s0.LimitTop != -math.MaxFloat64 || s1.LimitBottom != math.MaxFloat64 {
		t.Fatalf("expected outer staves unbounded")
	}
	if s0.LimitBottom != s1.LimitTop {
		t.Fatalf("expected a shared reserved margin, got %.1f and %.1f", s0.LimitBottom, s1.LimitTop)
	}
	if s0.LimitBottom <= s0.LineY(s0.VisibleMinZ) || s1.LimitTop >= s1.LineY(s1.VisibleMaxZ) {
		t.Fatalf("expected the margin between the two staves")
	}
	lines := s0.StaffLines()
	if len(lines) != 5 || math.Abs(lines[1]-lines[0]-cfg.StaffLineSpacingPx) > eps {
		t.Fatalf("unexpected staff lines %v", lines)
	}
}

func TestEmptyStaffUsesDefaultRange(t *testing.T) {
	ls := scoreOf(restAt("r", 0, "1", 0, 1920))
	staves := buildStaves(ls, DefaultConfig())
	if staves[0].CenterLine != 0 || staves[0].VisibleMinZ != -4 || staves[0].VisibleMaxZ != 4 {
		t.Fatalf("expected centred default range, got %+v", staves[0])
	}
}
