package readings

import (
	"fmt"
	"math"
	"strings"

	sessiondto "thermolab/internal/modules/session/dto"
)

const (
	markLow   = 'o'
	markHigh  = '+'
	markBoth  = '*'
	markTrend = '·'
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) col(x float64, width int) int {
	if b.maxX == b.minX {
		return width / 2
	}
	return int(math.Round((x - b.minX) / (b.maxX - b.minX) * float64(width-1)))
}

func (b bounds) row(y float64, height int) int {
	if b.maxY == b.minY {
		return height / 2
	}
	return height - 1 - int(math.Round((y-b.minY)/(b.maxY-b.minY)*float64(height-1)))
}

// Plot draws the scatter points over their trend lines on a character grid.
// Trend lines connect the unshifted points; markers use the shifted copies.
func Plot(series sessiondto.SeriesOutput, width, height int) string {
	if width < 8 || height < 3 {
		return ""
	}
	all := make([]sessiondto.PointOutput, 0, 2*(len(series.Low)+len(series.High)))
	all = append(all, series.Low...)
	all = append(all, series.High...)
	all = append(all, series.ScatterLow...)
	all = append(all, series.ScatterHigh...)
	if len(all) == 0 {
		return ""
	}
	b := bounds{minX: all[0].Ambient, maxX: all[0].Ambient, minY: all[0].Bird, maxY: all[0].Bird}
	for _, p := range all[1:] {
		b.minX, b.maxX = math.Min(b.minX, p.Ambient), math.Max(b.maxX, p.Ambient)
		b.minY, b.maxY = math.Min(b.minY, p.Bird), math.Max(b.maxY, p.Bird)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	trend(grid, b, series.Low)
	trend(grid, b, series.High)
	mark(grid, b, series.ScatterLow, markLow)
	mark(grid, b, series.ScatterHigh, markHigh)

	var sb strings.Builder
	top := fmt.Sprintf("%6.1f ┤", b.maxY)
	bottom := fmt.Sprintf("%6.1f ┤", b.minY)
	pad := strings.Repeat(" ", 7) + "│"
	for i, line := range grid {
		switch i {
		case 0:
			sb.WriteString(top)
		case height - 1:
			sb.WriteString(bottom)
		default:
			sb.WriteString(pad)
		}
		sb.WriteString(string(line) + "\n")
	}
	sb.WriteString(strings.Repeat(" ", 7) + "└" + strings.Repeat("─", width) + "\n")
	left := fmt.Sprintf("%.1f", b.minX)
	right := fmt.Sprintf("%.1f", b.maxX)
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	sb.WriteString(strings.Repeat(" ", 8) + left + strings.Repeat(" ", gap) + right)
	return sb.String()
}

func trend(grid [][]rune, b bounds, points []sessiondto.PointOutput) {
	height, width := len(grid), len(grid[0])
	for i := 1; i < len(points); i++ {
		c0, r0 := b.col(points[i-1].Ambient, width), b.row(points[i-1].Bird, height)
		c1, r1 := b.col(points[i].Ambient, width), b.row(points[i].Bird, height)
		steps := max(abs(c1-c0), abs(r1-r0))
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			c := c0 + int(math.Round(t*float64(c1-c0)))
			r := r0 + int(math.Round(t*float64(r1-r0)))
			if grid[r][c] == ' ' {
				grid[r][c] = markTrend
			}
		}
	}
}

func mark(grid [][]rune, b bounds, points []sessiondto.PointOutput, glyph rune) {
	height, width := len(grid), len(grid[0])
	for _, p := range points {
		r, c := b.row(p.Bird, height), b.col(p.Ambient, width)
		switch grid[r][c] {
		case markLow, markHigh, markBoth:
			if grid[r][c] != glyph {
				grid[r][c] = markBoth
			}
		default:
			grid[r][c] = glyph
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
