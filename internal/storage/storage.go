package storage

import "errors"

var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category is referenced by entries")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrUnknownKind      = errors.New("unknown entry kind")
)
