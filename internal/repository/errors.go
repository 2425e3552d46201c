package repository

import "errors"

var (
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchClosed     = errors.New("match is no longer in progress")
	ErrUnexpectedDB    = errors.New("unexpected database error")
)
