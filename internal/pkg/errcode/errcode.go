package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrNotFound
	ErrInternal
	ErrAIUnavailable
	ErrPersistFailed
	ErrAnswerExhausted
)
