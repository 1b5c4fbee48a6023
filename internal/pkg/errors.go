package pkg

import (
	"errors"
	"fmt"
	"net/http"
)

// 基础错误类型，handler 层据此映射 HTTP 状态码
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrUnauthorized      = errors.New("invalid email / password")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound   = fmt.Errorf("category %w", ErrNotFound)
	ErrCommunityNotFound  = fmt.Errorf("community %w", ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("membership %w", ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("post %w", ErrNotFound)

	ErrDuplicateMembership = fmt.Errorf("membership %w", ErrDuplicate)
	ErrDuplicateName       = fmt.Errorf("name %w", ErrDuplicate)
	ErrDuplicateEmail      = fmt.Errorf("email %w", ErrDuplicate)
)

// Invalid 构造带原因的校验错误
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsDomain 判断是否为业务层可识别的错误（非存储层故障）
func IsDomain(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrUnauthorized)
}

// StatusOf 错误 -> HTTP 状态码
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
