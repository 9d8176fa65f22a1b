package game

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// moveHistoryLimit bounds the recent-move ring kept per game.
const moveHistoryLimit = 10

// MarshalJSON renders a cell as the two-element array [row, col] used on
// the wire for paths and cone lists.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("cell must be a [row, col] pair, got %d elements", len(pair))
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// MarshalText renders a cell as "row,col". Used for the string keys of
// the cones map.
func (c Cell) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", c.Row, c.Col)), nil
}

func (c *Cell) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), ",", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed cell key %q", text)
	}
	row, err := strconv.Atoi(parts[0])
	if err != nil {
		return err
	}
	col, err := strconv.Atoi(parts[1])
	if err != nil {
		return err
	}
	c.Row, c.Col = row, col
	return nil
}

// Move is one entry of the recent-move ring: the color that moved and
// the full path it took. It serializes as [color, [[r,c], ...]].
type Move struct {
	Color Color
	Path  []Cell
}

func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{m.Color, m.Path})
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &m.Color); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &m.Path)
}

// GameState is the mutable per-room board state: cone placements, the
// player-to-color assignment and the recent-move ring. It is not
// self-synchronizing; the owning Room's lock guards all access.
type GameState struct {
	Cones         map[Cell]Color `json:"cones"`
	PlayersColors map[int]Color  `json:"players_colors"`
	Moves         []Move         `json:"moves"`
}

// NewGameState returns an empty board with no players.
func NewGameState() *GameState {
	return &GameState{
		Cones:         make(map[Cell]Color),
		PlayersColors: make(map[int]Color),
		Moves:         []Move{},
	}
}

// Occupied reports whether the cell holds a cone.
func (gs *GameState) Occupied(c Cell) (bool, error) {
	if !InBounds(c.Row, c.Col) {
		return false, ErrOutOfBounds
	}
	_, ok := gs.Cones[c]
	return ok, nil
}

// AddCone places a cone of the given color on an empty cell.
func (gs *GameState) AddCone(c Cell, color Color) error {
	if !InBounds(c.Row, c.Col) {
		return ErrOutOfBounds
	}
	if _, ok := gs.Cones[c]; ok {
		return ErrCellOccupied
	}
	gs.Cones[c] = color
	return nil
}

// RemoveCone clears the cell if a cone is present.
func (gs *GameState) RemoveCone(c Cell) {
	delete(gs.Cones, c)
}

// ColorOf returns the user's assigned color, Neutral if none.
func (gs *GameState) ColorOf(userID int) Color {
	return gs.PlayersColors[userID]
}

// PlayerCones lists every cell occupied by the user's color.
func (gs *GameState) PlayerCones(userID int) []Cell {
	color, ok := gs.PlayersColors[userID]
	if !ok {
		return nil
	}
	var cells []Cell
	for cell, c := range gs.Cones {
		if c == color {
			cells = append(cells, cell)
		}
	}
	return cells
}

// AddCones assigns color to the user and populates the color's home
// triangle. Calling it again for the same user is a no-op when the color
// matches and its cones are already on the board.
func (gs *GameState) AddCones(userID int, color Color) error {
	if color == Neutral || color > MaxColor {
		return ErrInvalidState
	}
	home := HomeCells(color)
	if gs.PlayersColors[userID] == color {
		for _, c := range gs.Cones {
			if c == color {
				return nil
			}
		}
	}
	for _, cell := range home {
		if _, ok := gs.Cones[cell]; ok {
			return ErrCellOccupied
		}
	}
	gs.PlayersColors[userID] = color
	for _, cell := range home {
		gs.Cones[cell] = color
	}
	return nil
}

// RemoveCones deletes every cone belonging to the user and drops the
// user's color assignment.
func (gs *GameState) RemoveCones(userID int) {
	color, ok := gs.PlayersColors[userID]
	if !ok {
		return
	}
	for cell, c := range gs.Cones {
		if c == color {
			delete(gs.Cones, cell)
		}
	}
	delete(gs.PlayersColors, userID)
}

// CanJump reports whether a cone at from may jump to to: to is empty and
// not adjacent to from, and exactly one cell is a common neighbor of
// both, holding the cone being jumped over.
func (gs *GameState) CanJump(from, to Cell) (bool, error) {
	fromNeighbors, err := Neighbors(from.Row, from.Col)
	if err != nil {
		return false, err
	}
	occupied, err := gs.Occupied(to)
	if err != nil {
		return false, err
	}
	if occupied || fromNeighbors[to] {
		return false, nil
	}
	var pivot Cell
	count := 0
	for n := range fromNeighbors {
		nn, err := Neighbors(n.Row, n.Col)
		if err != nil {
			return false, err
		}
		if nn[from] && nn[to] {
			pivot = n
			count++
		}
	}
	if count != 1 {
		return false, nil
	}
	return gs.Occupied(pivot)
}

// ValidatePath checks a proposed move path. A two-cell path is either a
// single step to an empty neighbor or one jump; longer paths must be
// jump chains with every landing cell empty.
func (gs *GameState) ValidatePath(path []Cell) error {
	if len(path) < 2 {
		return ErrInvalidPath
	}
	if len(path) == 2 {
		from, to := path[0], path[1]
		occupied, err := gs.Occupied(to)
		if err != nil {
			return err
		}
		if occupied {
			return ErrInvalidPath
		}
		neighbors, err := Neighbors(from.Row, from.Col)
		if err != nil {
			return err
		}
		if neighbors[to] {
			return nil
		}
		ok, err := gs.CanJump(from, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidPath
		}
		return nil
	}
	for i := 1; i < len(path); i++ {
		occupied, err := gs.Occupied(path[i])
		if err != nil {
			return err
		}
		if occupied {
			return ErrInvalidPath
		}
		ok, err := gs.CanJump(path[i-1], path[i])
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidPath
		}
	}
	return nil
}

// AllConesHome reports whether every cone of the user's color sits on a
// cell whose home color is the complement of the user's color.
func (gs *GameState) AllConesHome(userID int) (bool, error) {
	color, ok := gs.PlayersColors[userID]
	if !ok {
		return false, ErrInvalidState
	}
	target := Complement(color)
	for cell, c := range gs.Cones {
		if c != color {
			continue
		}
		home, err := HomeColor(cell.Row, cell.Col)
		if err != nil {
			return false, err
		}
		if home != target {
			return false, nil
		}
	}
	return true, nil
}

// UpdateCones applies a validated path for the user: the cone at the
// origin moves to the final cell and the move is recorded in the bounded
// history. Returns the applied path and whether the move finished the
// game for this user.
func (gs *GameState) UpdateCones(path []Cell, userID int) ([]Cell, bool, error) {
	if err := gs.ValidatePath(path); err != nil {
		return nil, false, err
	}
	origin, dest := path[0], path[len(path)-1]
	color, ok := gs.Cones[origin]
	if !ok {
		return nil, false, ErrInvalidState
	}
	delete(gs.Cones, origin)
	gs.Cones[dest] = color
	gs.Moves = append(gs.Moves, Move{Color: color, Path: path})
	if len(gs.Moves) > moveHistoryLimit {
		gs.Moves = gs.Moves[len(gs.Moves)-moveHistoryLimit:]
	}
	finished, err := gs.AllConesHome(userID)
	if err != nil {
		return nil, false, err
	}
	return path, finished, nil
}

// Clone returns a deep copy, used to snapshot state for broadcasts.
func (gs *GameState) Clone() *GameState {
	cp := &GameState{
		Cones:         make(map[Cell]Color, len(gs.Cones)),
		PlayersColors: make(map[int]Color, len(gs.PlayersColors)),
		Moves:         make([]Move, len(gs.Moves)),
	}
	for k, v := range gs.Cones {
		cp.Cones[k] = v
	}
	for k, v := range gs.PlayersColors {
		cp.PlayersColors[k] = v
	}
	copy(cp.Moves, gs.Moves)
	return cp
}
