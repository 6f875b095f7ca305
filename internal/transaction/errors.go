package transaction

import "errors"

var (
	ErrNotFound         = errors.New("transaction not found")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrPermissionDenied = errors.New("transaction belongs to another user")
	ErrDeleted          = errors.New("transaction was deleted")
)
