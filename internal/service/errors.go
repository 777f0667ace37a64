package service

import (
	"errors"
	"fmt"

	"chatroom-sync/internal/domain"
)

// 业务错误。校验类错误在任何存储变更之前返回（fail fast，无需回滚）。
var (
	ErrMissingUsername  = errors.New("username required")
	ErrMissingRoom      = errors.New("room name required")
	ErrMissingContent   = errors.New("message content required")
	ErrContentTooLong   = fmt.Errorf("message content exceeds %d characters", domain.MaxContentLength)
	ErrInvalidSortKey   = errors.New("invalid sort key")
	ErrRoomNotFound     = errors.New("room not found")
	ErrStoreUnavailable = errors.New("store unavailable, please retry")
)

// IsValidationError 判断错误是否属于校验类（应映射为 4xx 而不是 5xx）。
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingUsername) ||
		errors.Is(err, ErrMissingRoom) ||
		errors.Is(err, ErrMissingContent) ||
		errors.Is(err, ErrContentTooLong) ||
		errors.Is(err, ErrInvalidSortKey)
}
