package domain

// to represent the player marks on the board
type Mark string

const (
	Empty Mark = ""
	MarkX Mark = "X"
	MarkO Mark = "O"
)

const Cells = 9

// Board is the 3x3 field in row-major order. Cells are "", "X" or "O".
type Board []Mark

func NewBoard() Board {
	return make(Board, Cells)
}

// IsValid reports whether the board has exactly 9 cells holding
// only known marks.
func (b Board) IsValid() bool {
	if len(b) != Cells {
		return false
	}
	for _, cell := range b {
		if cell != Empty && cell != MarkX && cell != MarkO {
			return false
		}
	}
	return true
}

func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// Opponent returns the other mark.
func Opponent(m Mark) Mark {
	if m == MarkX {
		return MarkO
	}
	return MarkX
}
