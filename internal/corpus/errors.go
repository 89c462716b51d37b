package corpus

import "errors"

var (
	ErrParse        = errors.New("malformed corpus line")
	ErrUnknownToken = errors.New("token not in vocabulary")
	ErrUnknownTask  = errors.New("unknown task")
)
