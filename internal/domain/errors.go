package domain

import "errors"

var (
	// ErrProjectNotFound возвращается, когда проект отсутствует в БД.
	ErrProjectNotFound = errors.New("project not found")
)
