package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
	ErrWrongMode       = errors.New("operation not supported for this billing mode")
	ErrAlreadyPaused   = errors.New("session already paused")
	ErrAlreadyRunning  = errors.New("session already running")
	ErrNoOpenHistory   = errors.New("no in-progress history record")
)
