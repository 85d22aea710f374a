package liveness

import "errors"

var (
	ErrNoSession      = errors.New("no liveness session")
	ErrSessionExpired = errors.New("liveness session expired")
)
