package entity

import (
	"errors"
)

var (
	ErrDataNotFound     = errors.New("data not found")
	ErrConflictingData  = errors.New("data conflicts with existing data in unique column")
	ErrInvalidData      = errors.New("invalid data")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrNotAuthorized    = errors.New("user not authorized")
	ErrStorageCapacity  = errors.New("local storage capacity exceeded")
	ErrConfigPathNotSet = errors.New("CONFIG_PATH not set and -config flag not provided")
)
