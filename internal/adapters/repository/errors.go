package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPoolNotFound  = errors.New("pool not found")
	ErrRouteNotFound = errors.New("route not found")
)
