package protocol

import "errors"

var (
	ErrMissingCustomColors = errors.New("custom light mode selected without per-key colours")
	ErrMissingColor        = errors.New("light mode requires a base colour")
)
