package token

import (
	"errors"
)

var (
	ErrTokenDoesNotExist    = errors.New("token does not exist")
	ErrTokenAlreadyConsumed = errors.New("token already consumed")
	ErrTokenExpired         = errors.New("token expired")
	ErrDispatchFailed       = errors.New("token notification dispatch failed")
)
