package user

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = errors.New("token expired")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrCompanyIDRequired     = errors.New("company ID is required")
)
