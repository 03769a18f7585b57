package project

import "errors"

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrProjectNameExists = errors.New("project with same name exists")
	ErrMemberExists      = errors.New("employee is already a project member")
	ErrMemberNotFound    = errors.New("employee is not a project member")
)
