package region

import "github.com/xtding233/tile-merge/internal/board"

// Shape is the classifier's verdict on a region.
type Shape int

const (
	Plain Shape = iota
	Core
)

func (s Shape) String() string {
	if s == Core {
		return "core"
	}
	return "plain"
}

// CoreRule describes which shapes count as core patterns.
//
// A straight run qualifies when MinRun <= length <= MaxRun; MaxRun <= 0
// removes the upper bound. Squares enables the 2×2 block rule.
type CoreRule struct {
	Lines   bool `json:"lines"`
	MinRun  int  `json:"min_run"`
	MaxRun  int  `json:"max_run"`
	Squares bool `json:"squares"`
}

func DefaultCoreRule() CoreRule {
	return CoreRule{Lines: true, MinRun: 4, MaxRun: 5, Squares: true}
}

func (c CoreRule) runQualifies(n int) bool {
	if n <= 0 || n < c.MinRun {
		return false
	}
	return c.MaxRun <= 0 || n <= c.MaxRun
}

// Classify inspects r's coordinate set only, scanning its bounding box for
// maximal horizontal and vertical runs and for fully contained 2×2 blocks.
func Classify(r Region, rule CoreRule) Shape {
	lo, hi, ok := r.Bounds()
	if !ok {
		return Plain
	}
	if rule.Lines {
		for y := lo.Y; y <= hi.Y; y++ {
			run := 0
			for x := lo.X; x <= hi.X+1; x++ {
				if x <= hi.X && r.Has(board.Point{X: x, Y: y}) {
					run++
					continue
				}
				if rule.runQualifies(run) {
					return Core
				}
				run = 0
			}
		}
		for x := lo.X; x <= hi.X; x++ {
			run := 0
			for y := lo.Y; y <= hi.Y+1; y++ {
				if y <= hi.Y && r.Has(board.Point{X: x, Y: y}) {
					run++
					continue
				}
				if rule.runQualifies(run) {
					return Core
				}
				run = 0
			}
		}
	}
	if rule.Squares {
		for y := lo.Y; y < hi.Y; y++ {
			for x := lo.X; x < hi.X; x++ {
				if r.Has(board.Point{X: x, Y: y}) && r.Has(board.Point{X: x + 1, Y: y}) &&
					r.Has(board.Point{X: x, Y: y + 1}) && r.Has(board.Point{X: x + 1, Y: y + 1}) {
					return Core
				}
			}
		}
	}
	return Plain
}
