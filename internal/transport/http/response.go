package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"mavi-fit-game/internal/domain"
)

type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	status  int
	code    string
	message string
}

var errRateLimited = errors.New("rate limited")

// errorTable maps sentinel errors to responses. Messages are shown to players as-is.
var errorTable = []struct {
	target error
	apiError
}{
	{domain.ErrSessionNotFound, apiError{http.StatusNotFound, "SESSION_NOT_FOUND", "Oyun oturumu bulunamadı"}},
	{domain.ErrSessionEnded, apiError{http.StatusBadRequest, "SESSION_ENDED", "Oyun oturumu zaten sona erdi"}},
	{domain.ErrSessionConflict, apiError{http.StatusConflict, "SESSION_CONFLICT", "Oturum başka bir istekle güncellendi, lütfen tekrar deneyin"}},
	{domain.ErrQuestionNotFound, apiError{http.StatusNotFound, "QUESTION_NOT_FOUND", "Soru bulunamadı"}},
	{domain.ErrQuestionMismatch, apiError{http.StatusBadRequest, "QUESTION_MISMATCH", "Bu soru oturumun güncel sorusu değil"}},
	{domain.ErrOptionNotFound, apiError{http.StatusBadRequest, "OPTION_NOT_FOUND", "Seçenek bulunamadı"}},
	{domain.ErrCategoryNotFound, apiError{http.StatusNotFound, "CATEGORY_NOT_FOUND", "Kategori bulunamadı"}},
	{domain.ErrCategoryNotPlayable, apiError{http.StatusBadRequest, "CATEGORY_NOT_PLAYABLE", "Bu kategori şu anda oynanamaz"}},
	{domain.ErrNoEligibleQuestion, apiError{http.StatusInternalServerError, "NO_ELIGIBLE_QUESTION", "Bu kategoride sorulacak soru kalmadı"}},
	{domain.ErrLifelineUsed, apiError{http.StatusBadRequest, "LIFELINE_USED", "Bu joker hakkı zaten kullanıldı"}},
	{domain.ErrUserNotFound, apiError{http.StatusNotFound, "USER_NOT_FOUND", "Kullanıcı bulunamadı"}},
	{domain.ErrEmailTaken, apiError{http.StatusConflict, "EMAIL_TAKEN", "Bu e-posta adresi zaten kayıtlı"}},
	{domain.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "E-posta veya şifre hatalı"}},
	{domain.ErrUnauthorized, apiError{http.StatusUnauthorized, "UNAUTHORIZED", "Oturum açmanız gerekiyor"}},
	{domain.ErrForbidden, apiError{http.StatusForbidden, "FORBIDDEN", "Bu işlem için yetkiniz yok"}},
	{domain.ErrBadgeNotFound, apiError{http.StatusNotFound, "BADGE_NOT_FOUND", "Rozet bulunamadı"}},
	{domain.ErrReportNotFound, apiError{http.StatusNotFound, "REPORT_NOT_FOUND", "Hata bildirimi bulunamadı"}},
	{domain.ErrInvalidTransition, apiError{http.StatusBadRequest, "INVALID_TRANSITION", "Geçersiz durum geçişi"}},
	{domain.ErrUnknownEvent, apiError{http.StatusBadRequest, "UNKNOWN_EVENT", "Bilinmeyen etkinlik türü"}},
	{errRateLimited, apiError{http.StatusTooManyRequests, "RATE_LIMITED", "Çok fazla istek gönderdiniz, lütfen biraz bekleyin"}},
}

func classify(err error) apiError {
	if domain.IsValidation(err) {
		return apiError{http.StatusBadRequest, "VALIDATION_ERROR", "Geçersiz istek: " + err.Error()}
	}
	for _, entry := range errorTable {
		if errors.Is(err, entry.target) {
			return entry.apiError
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case http.StatusNotFound:
			return apiError{fe.Code, "NOT_FOUND", "Kaynak bulunamadı"}
		case http.StatusMethodNotAllowed:
			return apiError{fe.Code, "METHOD_NOT_ALLOWED", "Bu yöntem desteklenmiyor"}
		}
		if fe.Code < http.StatusInternalServerError {
			return apiError{fe.Code, "BAD_REQUEST", "Geçersiz istek"}
		}
	}
	return apiError{http.StatusInternalServerError, "INTERNAL", "Beklenmeyen bir hata oluştu"}
}

// errorHandler renders every error returned by a handler as the error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
	}
	return c.Status(e.status).JSON(envelope{Error: &errorBody{Code: e.code, Message: e.message}})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(envelope{Data: data})
}

func created(c *fiber.Ctx, data interface{}) error {
	return c.Status(http.StatusCreated).JSON(envelope{Data: data})
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Invalid("body", "malformed request body")
	}
	return nil
}
