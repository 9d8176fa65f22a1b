// Package game implements the sternhalma board, rules engine, room state
// machine and event fan-out.
package game

// Color identifies a player's cone set. Neutral marks unowned board
// cells.
type Color int

const (
	Neutral Color = iota
	Purple
	Green
	Orange
	Yellow
	Red
	Blue
)

// MaxColor is the highest valid player color.
const MaxColor = Blue

func (c Color) String() string {
	switch c {
	case Purple:
		return "purple"
	case Green:
		return "green"
	case Orange:
		return "orange"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "neutral"
	}
}

// Complement returns the color whose home triangle is the target of c.
func Complement(c Color) Color {
	switch c {
	case Purple:
		return Yellow
	case Yellow:
		return Purple
	case Green:
		return Red
	case Red:
		return Green
	case Orange:
		return Blue
	case Blue:
		return Orange
	default:
		return Neutral
	}
}

// Cell addresses one board position as (row, position-in-row).
type Cell struct {
	Row int
	Col int
}

// PointCounts is the number of cells in each of the 21 board rows. The
// star shape gives 121 cells in total.
var PointCounts = [21]int{1, 2, 3, 4, 5, 16, 15, 14, 13, 12, 11, 12, 13, 14, 15, 16, 5, 4, 3, 2, 1}

// InBounds reports whether (row, col) addresses a cell on the board.
func InBounds(row, col int) bool {
	if row < 0 || row >= len(PointCounts) {
		return false
	}
	return col >= 0 && col < PointCounts[row]
}

// HomeColor returns the color owning the cell as part of its home
// triangle, Neutral for the hexagonal middle.
func HomeColor(row, col int) (Color, error) {
	if !InBounds(row, col) {
		return Neutral, ErrOutOfBounds
	}
	switch {
	case row <= 4:
		return Purple, nil
	case row >= 16:
		return Yellow, nil
	case row <= 9:
		edge := 10 - row
		if col < edge {
			return Blue, nil
		}
		if col >= PointCounts[row]-edge {
			return Green, nil
		}
	case row >= 11:
		edge := row - 10
		if col < edge {
			return Red, nil
		}
		if col >= PointCounts[row]-edge {
			return Orange, nil
		}
	}
	return Neutral, nil
}

// HomeCells lists the 15 cells of the color's home triangle.
func HomeCells(color Color) []Cell {
	var cells []Cell
	for row := range PointCounts {
		for col := 0; col < PointCounts[row]; col++ {
			if home, _ := HomeColor(row, col); home == color {
				cells = append(cells, Cell{row, col})
			}
		}
	}
	return cells
}

// columnShifts maps the cell-count delta between a row and the row above
// or below it onto the pair of column offsets reaching that row's two
// adjacent cells. wideningSide selects the offsets on the side where the
// star widens across the long rows.
func columnShifts(delta int, wideningSide bool) (int, int) {
	shift := delta
	if abs(delta) > 1 {
		shift = sign(delta) * (abs(delta) - 1) / 2
	}
	switch shift {
	case -1:
		return shift, shift + 1
	case 1:
		return shift, shift - 1
	case -5, 5:
		if wideningSide {
			return shift, shift + 1
		}
		return shift, shift - 1
	}
	return -1, -1
}

// Neighbors returns the set of cells adjacent to (row, col). Adjacency
// follows the hexagonal grid through the row-width transitions of the
// star, including the jumps between the 5-wide triangle rows and the
// 16-wide body rows.
func Neighbors(row, col int) (map[Cell]bool, error) {
	if !InBounds(row, col) {
		return nil, ErrOutOfBounds
	}
	lastRow := len(PointCounts) - 1

	upDelta, downDelta := 1, 1
	if row < lastRow {
		upDelta = PointCounts[row+1] - PointCounts[row]
	}
	if row > 0 {
		downDelta = PointCounts[row-1] - PointCounts[row]
	}
	up0, up1 := columnShifts(upDelta, row <= 10)
	down0, down1 := columnShifts(downDelta, row >= 10)

	candidates := [6]Cell{
		{row, col - 1},
		{row, col + 1},
		{row - 1, col + down0},
		{row - 1, col + down1},
		{row + 1, col + up0},
		{row + 1, col + up1},
	}

	result := make(map[Cell]bool)
	for _, c := range candidates {
		if !InBounds(c.Row, c.Col) {
			continue
		}
		// A same-column cell across a wide transition is not adjacent.
		if c.Col == col {
			sameColOK := (c.Row < row && abs(downDelta) <= 1) ||
				(c.Row > row && abs(upDelta) <= 1)
			if !sameColOK {
				continue
			}
		}
		result[c] = true
	}
	return result, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
