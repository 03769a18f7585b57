package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrCannotDeleteSelf = errors.New("cannot delete your own employee record")
	ErrUnauthorized     = errors.New("unauthorized to access this employee")
)
