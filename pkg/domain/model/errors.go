package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repository backends
var (
	ErrNotFound     = goerr.New("not found")
	ErrDuplicateID  = goerr.New("duplicate ID")
	ErrInvalidInput = goerr.New("invalid input")
)
