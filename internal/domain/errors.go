package domain

import "errors"

var (
	ErrTokenGeneration = errors.New("failed to generate admin token")
)
