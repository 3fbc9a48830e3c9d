package admin

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrSelfDelete     = errors.New("admins cannot delete their own account")
	ErrSelfRoleChange = errors.New("admins cannot change their own role")
)
