package domain

// to represent the terminal state of a board
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeDraw
)

// the 8 winning lines: 3 rows, 3 columns, 2 diagonals
var winningLines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate checks a board for a terminal result. A line wins if all
// three of its cells hold the same non-empty mark; a draw is a full
// board with no winning line. The win check always runs first so a
// full board with a winning line reports the win, not a draw.
func Evaluate(board Board) (Outcome, Mark) {
	if len(board) != Cells {
		return OutcomeNone, Empty
	}

	for _, line := range winningLines {
		first := board[line[0]]
		if first != Empty && board[line[1]] == first && board[line[2]] == first {
			return OutcomeWin, first
		}
	}

	if board.IsFull() {
		return OutcomeDraw, Empty
	}

	return OutcomeNone, Empty
}
