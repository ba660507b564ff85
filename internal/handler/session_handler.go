package handler

import (
	"net/http"
	"time"

	"taskboard/internal/identity"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
)

// TokenIssuer подписывает токены сессий анонимных пользователей
type TokenIssuer interface {
	Issue(principal model.Principal) (string, time.Time, error)
}

type SessionHandler struct {
	issuer TokenIssuer
}

func NewSessionHandler(issuer TokenIssuer) *SessionHandler {
	return &SessionHandler{issuer: issuer}
}

type SessionResponse struct {
	Principal model.Principal `json:"principal" example:"anon-4b1d0f3e-8f0a-4c55-9f0e-5d1c0a0e2b7a"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Create создает анонимную сессию
// @Summary      Start an anonymous session
// @Description  Issues a fresh anonymous principal and a bearer token for it
// @Tags         Session
// @Produce      json
// @Success      201  {object}  SessionResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /session [post]
func (h *SessionHandler) Create(c *gin.Context) {
	// Генерируем нового анонимного принципала
	principal := identity.NewPrincipal()

	token, expiresAt, err := h.issuer.Issue(principal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Principal: principal,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Health проверка живости сервиса
// @Summary  Liveness check
// @Tags     Session
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /healthz [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
