package errors

import "errors"

var (
	ErrInvalid     = errors.New("invalid")
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("provider unavailable")
	ErrPersistence = errors.New("persistence failed")
	ErrExhausted   = errors.New("all fallbacks exhausted")
	ErrInternal    = errors.New("internal")
)

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func IsExhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}

func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
