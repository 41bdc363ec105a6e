package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrUserExist          = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
)
