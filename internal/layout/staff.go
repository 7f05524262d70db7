package layout

import (
	"math"

	"github.com/cbegin/mmlengrave-go/internal/score"
)

const lineStep = 2

// buildStaves stacks one StaffLayout per staff, top to bottom.
func buildStaves(ls *score.LogicalScore, cfg Config) []StaffLayout {
	refs := ls.Staves()
	minZ := make([]int, len(refs))
	maxZ := make([]int, len(refs))
	seen := make([]bool, len(refs))
	for _, ref := range refs {
		for _, v := range ref.Staff.Voices {
			for _, e := range v.Events {
				if e.Kind != score.KindNote || e.Pitch == nil {
					continue
				}
				si := e.StaffIndex
				if si < 0 || si >= len(refs) {
					continue
				}
				z := e.Pitch.Z
				if !seen[si] || z < minZ[si] {
					minZ[si] = z
				}
				if !seen[si] || z > maxZ[si] {
					maxZ[si] = z
				}
				seen[si] = true
			}
		}
	}

	half := (cfg.StaffLineCount / 2) * lineStep
	spacing := cfg.StaffLineSpacingPx / 2
	out := make([]StaffLayout, len(refs))
	top := cfg.MarginPx
	for i, ref := range refs {
		c := centerLine(minZ[i], maxZ[i])
		s := StaffLayout{
			ID:          ref.ID,
			Index:       i,
			LineSpacing: spacing,
			LineStep:    lineStep,
			CenterLine:  c,
			VisibleMinZ: c - half,
			VisibleMaxZ: c + half,
			LimitTop:    -math.MaxFloat64,
			LimitBottom: math.MaxFloat64,
		}
		s.DrawMinZ = s.VisibleMinZ
		s.DrawMaxZ = s.VisibleMaxZ
		if seen[i] {
			s.DrawMinZ = min(s.DrawMinZ, minZ[i])
			s.DrawMaxZ = max(s.DrawMaxZ, maxZ[i])
		}
		s.Top = top
		s.Bottom = top + float64(s.DrawMaxZ-s.DrawMinZ)*spacing
		top = s.Bottom + cfg.StaffGapPx
		out[i] = s
	}
	for i := 0; i+1 < len(out); i++ {
		mid := (out[i].LineY(out[i].VisibleMinZ) + out[i+1].LineY(out[i+1].VisibleMaxZ)) / 2
		out[i].LimitBottom = mid
		out[i+1].LimitTop = mid
	}
	return out
}

// centerLine rounds the midpoint of [lo, hi] to an even Z, ties upward.
func centerLine(lo, hi int) int {
	mid := float64(lo+hi) / 2
	return int(math.Floor(mid/2+0.5)) * 2
}
