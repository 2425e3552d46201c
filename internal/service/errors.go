package service

import "errors"

// Battle protocol errors. Their text is sent to the client as-is.
var (
	ErrUnauthorized        = errors.New("UNAUTHORIZED")
	ErrAlreadyInMatch      = errors.New("You are already in an active match.")
	ErrNotQueued           = errors.New("You are not in the queue.")
	ErrInvalidRoom         = errors.New("Invalid room.")
	ErrMatchEnded          = errors.New("Match has ended.")
	ErrInvalidQuestion     = errors.New("Invalid question.")
	ErrAlreadyAnswered     = errors.New("You already answered this question.")
	ErrInvalidOption       = errors.New("Invalid option.")
	ErrCannotSaveAnswer    = errors.New("Cannot save answer.")
	ErrNotEnoughVocabulary = errors.New("Not enough vocabulary data to create a match.")
	ErrCannotCreateMatch   = errors.New("Cannot create match.")
	ErrUnknownEvent        = errors.New("Unknown event.")
	ErrInvalidPayload      = errors.New("Invalid payload.")
)

const opponentLeftMessage = "Opponent left the match."
