package domain

// ClientMessage is the inbound envelope. The client tags every message
// with a method: "connect", "start", "join" or "move". gameId and
// betAmount travel as strings (stringified uint256 / ether amount).
type ClientMessage struct {
	Method    string `json:"method"`
	Account   string `json:"account"`
	GameID    string `json:"gameId"`
	BetAmount string `json:"betAmount"`
	Symbol    Mark   `json:"symbol"`
	Field     Board  `json:"field"`
}

type ServerMessage struct {
	Method    string `json:"method"`
	Symbol    Mark   `json:"symbol,omitempty"`
	Turn      Mark   `json:"turn,omitempty"`
	GameID    string `json:"gameId,omitempty"`
	BetAmount string `json:"betAmount,omitempty"`
	Message   string `json:"message,omitempty"`
	Field     Board  `json:"field,omitempty"` // always set on update/result
	Player1   string `json:"player1,omitempty"`
	Player2   string `json:"player2,omitempty"`
	Winner    string `json:"winner,omitempty"`
	Reward    string `json:"reward,omitempty"`
}

// DrawAccount is the sentinel persisted in place of a winner when a
// game ends in a draw.
const DrawAccount = "0x0000000000000000000000000000000000deaD11"
