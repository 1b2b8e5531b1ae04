package utils

import (
	"errors"
	"net/http"

	apperrors "sourcing-system/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// kindToHTTP - единственное место, где виды ошибок ядра превращаются
// в HTTP-коды. Ядро про HTTP не знает.
func kindToHTTP(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindInvalidTransition, apperrors.KindChangePending,
		apperrors.KindAlreadyExists, apperrors.KindEditWindowExpired,
		apperrors.KindConcurrentModification:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		logger.Warn("Операция ядра отклонена",
			zap.String("kind", string(appErr.Kind)),
			zap.String("message", appErr.Message),
		)
		return c.JSON(kindToHTTP(appErr.Kind), &HTTPResponse{
			Status:  false,
			Message: appErr.Error(),
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		return c.JSON(echoErr.Code, &HTTPResponse{Status: false, Message: msg})
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		// Первое нарушение - остальные клиенту не нужны.
		e := validationErrors[0]
		return c.JSON(http.StatusBadRequest, &HTTPResponse{
			Status:  false,
			Message: "Ошибка валидации: поле '" + e.Field() + "' не прошло проверку '" + e.Tag() + "'",
		})
	}

	switch {
	case errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenNotYetValid),
		errors.Is(err, apperrors.ErrTokenIsNotAccess),
		errors.Is(err, apperrors.ErrTokenIsNotRefresh),
		errors.Is(err, apperrors.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, &HTTPResponse{Status: false, Message: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, &HTTPResponse{Status: false, Message: err.Error()})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &HTTPResponse{
		Status:  false,
		Message: "Внутренняя ошибка сервера",
	})
}
