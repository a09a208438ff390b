package domain

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrAlreadyQueued  Error = "connection already queued or playing"
	ErrInvalidGameID  Error = "invalid game id"
	ErrSeedsShortfall Error = "randomness source returned too few words"
)
