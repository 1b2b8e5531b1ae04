package errors

import (
	"errors"
	"fmt"
)

// Kind - закрытый перечень видов ошибок ядра workflow.
// Транспортный слой сам решает, как отобразить каждый вид (HTTP-код и т.д.),
// ядро оперирует только этими видами.
type Kind string

const (
	KindNotFound               Kind = "NOT_FOUND"
	KindInvalidTransition      Kind = "INVALID_TRANSITION"
	KindValidation             Kind = "VALIDATION_ERROR"
	KindForbidden              Kind = "FORBIDDEN"
	KindChangePending          Kind = "CHANGE_PENDING"
	KindAlreadyExists          Kind = "ALREADY_EXISTS"
	KindEditWindowExpired      Kind = "EDIT_WINDOW_EXPIRED"
	KindConcurrentModification Kind = "CONCURRENT_MODIFICATION"
)

// AppError - ошибка ядра. Message всегда называет конкретное поле/актора/статус,
// никаких "что-то пошло не так".
type AppError struct {
	Kind    Kind
	Message string
	// Field заполняется для KindValidation - первое нарушенное поле (fail-fast).
	Field string
	Err   error
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: поле '%s': %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is позволяет сравнивать ошибки через errors.Is по виду,
// например errors.Is(err, apperrors.ErrChangePending).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Эталонные ошибки для errors.Is-проверок в сервисах и тестах.
var (
	ErrNotFound               = &AppError{Kind: KindNotFound}
	ErrInvalidTransition      = &AppError{Kind: KindInvalidTransition}
	ErrValidation             = &AppError{Kind: KindValidation}
	ErrForbidden              = &AppError{Kind: KindForbidden}
	ErrChangePending          = &AppError{Kind: KindChangePending}
	ErrAlreadyExists          = &AppError{Kind: KindAlreadyExists}
	ErrEditWindowExpired      = &AppError{Kind: KindEditWindowExpired}
	ErrConcurrentModification = &AppError{Kind: KindConcurrentModification}
)

func NewNotFound(format string, args ...interface{}) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransition(format string, args ...interface{}) error {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// NewValidation - ошибка валидации с указанием первого нарушенного поля.
func NewValidation(field, format string, args ...interface{}) error {
	return &AppError{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(format string, args ...interface{}) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewChangePending(orderID string) error {
	return &AppError{Kind: KindChangePending, Message: fmt.Sprintf("по заказу %s уже есть изменение в статусе PENDING", orderID)}
}

func NewAlreadyExists(format string, args ...interface{}) error {
	return &AppError{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func NewEditWindowExpired(format string, args ...interface{}) error {
	return &AppError{Kind: KindEditWindowExpired, Message: fmt.Sprintf(format, args...)}
}

func NewConcurrentModification(entity, id string) error {
	return &AppError{Kind: KindConcurrentModification, Message: fmt.Sprintf("%s %s была изменена параллельно, повторите запрос", entity, id)}
}

// --- Ошибки аутентификации (вне видов ядра, используются только границей) ---

var (
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotAccess     = fmt.Errorf("ожидался access-токен")
	ErrTokenIsNotRefresh    = fmt.Errorf("ожидался refresh-токен")
	ErrEmptyAuthHeader      = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader    = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials   = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized         = fmt.Errorf("неавторизован")
)
