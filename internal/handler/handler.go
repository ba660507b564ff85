package handler

import (
	"errors"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrorResponse - тело ответа при любой ошибке
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid project code."`
}

// statusFor сопоставляет виды ошибок движка с HTTP статусами
func statusFor(err error) int {
	var validation *model.ValidationError
	var notFound *realtime.NotFoundError
	var storeErr *realtime.StoreError
	var subErr *realtime.SubscriptionError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, realtime.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.As(err, &storeErr), errors.As(err, &subErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError отдает клиенту понятное пользователю сообщение.
// Исходный текст ошибки попадает только в лог.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Request failed")
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: notify.Message(err)})
}

// currentPrincipal получает принципала из контекста, при его отсутствии отвечает 401
func currentPrincipal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return "", false
	}
	return principal, true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + label + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}
