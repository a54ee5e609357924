package viz

import (
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille dot canvas. Dots are addressed in sub-cell
// coordinates, so the drawable area is (2*Width) x (4*Height). Every plotted
// dot is also counted so dense regions can be told apart.
type Canvas struct {
	Width, Height int
	cells         []rune
	hits          []int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h}
	c.cells = make([]rune, w*h)
	c.hits = make([]int, w*h)
	c.Clear()
	return c
}

// DotsWide and DotsHigh are the canvas size in dots.
func (c *Canvas) DotsWide() int { return 2 * c.Width }
func (c *Canvas) DotsHigh() int { return 4 * c.Height }

func (c *Canvas) cell(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= c.DotsWide() || y >= c.DotsHigh() {
		return 0, false
	}
	return (y/4)*c.Width + x/2, true
}

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	i, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.cells[i] |= dotBits[y%4][x%2]
	c.hits[i]++
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	i, ok := c.cell(x, y)
	return ok && c.cells[i]&dotBits[y%4][x%2] != 0
}

// Hits is the number of Set calls that landed in character cell (col, row).
func (c *Canvas) Hits(col, row int) int {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return 0
	}
	return c.hits[row*c.Width+col]
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = brailleBlank
		c.hits[i] = 0
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Rows renders each character row. When style is not nil every cell is
// passed through it along with its position and hit count.
func (c *Canvas) Rows(style func(col, row int, text string, hits int) string) []string {
	rows := make([]string, c.Height)
	var b strings.Builder
	for r := 0; r < c.Height; r++ {
		b.Reset()
		line := c.cells[r*c.Width : (r+1)*c.Width]
		for col, ch := range line {
			if style == nil {
				b.WriteRune(ch)
				continue
			}
			b.WriteString(style(col, r, string(ch), c.hits[r*c.Width+col]))
		}
		rows[r] = b.String()
	}
	return rows
}

func (c *Canvas) String() string {
	return strings.Join(c.Rows(nil), "\n") + "\n"
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
