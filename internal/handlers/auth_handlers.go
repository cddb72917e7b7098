package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса регистрации")

	newUser, err := h.AuthService.Register(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "register"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", newUser.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "User registered"),
		toPayload("user_id", newUser.ID),
	)
}

// Login принимает form-кодированные username/password, как OAuth2
// password flow: в поле username приходит email
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := r.ParseForm(); err != nil {
		logger.Warn("HTTP: ошибка чтения формы",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid form body: "+err.Error())
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	logger.Info("HTTP: Вызов сервиса входа")

	token, err := h.AuthService.Login(r.Context(), email, password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "login"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Токен выдан",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("access_token", token),
		toPayload("token_type", "bearer"),
	)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	currentUser, err := h.AuthService.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "me"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	responseWithObject(w, http.StatusOK, dto.FromUser(currentUser))
}
