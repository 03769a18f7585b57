package activity

import "errors"

var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrScreenshotNotFound = errors.New("screenshot not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotOwner           = errors.New("activity belongs to another employee")
)
