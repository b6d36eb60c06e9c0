package service

import "errors"

// Shared sentinels; the session and config packages return these so callers
// can match them without importing the implementations.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPackNotFound    = errors.New("level pack not found")
	ErrInvalidPack     = errors.New("invalid level pack")
)
