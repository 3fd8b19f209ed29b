package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Popolzen/linkguard/internal/audit"
	"github.com/Popolzen/linkguard/internal/config"
	"github.com/Popolzen/linkguard/internal/linkcheck"
	"github.com/Popolzen/linkguard/internal/logger"
	"github.com/Popolzen/linkguard/internal/middleware/auth"
	"github.com/Popolzen/linkguard/internal/model"
	"github.com/Popolzen/linkguard/internal/service/shortener"
	"github.com/Popolzen/linkguard/internal/slug"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Максимальный размер тела запроса
const maxBodySize = 64 << 10

// ReservedPaths: первые сегменты статических маршрутов. Слаг с таким именем
// перекрыт маршрутом и не откроется через GET /:id.
var ReservedPaths = []string{"api", "ping", "metrics"}

// PostHandler создает короткую ссылку из URL в теле запроса (text/plain)
func PostHandler(urlService *shortener.URLService, cfg *config.Config, pub *audit.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid request body")
			return
		}

		userID := auth.UserID(c)
		res, err := urlService.Shorten(c.Request.Context(), shortener.ShortenRequest{
			URL:      string(body),
			Strategy: shortener.Random,
			Length:   cfg.SlugLength,
			UserID:   userID,
		})
		if err != nil {
			publishReject(pub, userID, string(body), err)
			status, resp := errorResponse(err)
			c.String(status, resp.Error)
			return
		}

		pub.Publish(audit.NewEvent(audit.ActionShorten, userID, res.URL).WithSlug(res.Slug))
		c.String(http.StatusCreated, shortLink(cfg, res.Slug))
	}
}

// PostHandlerJSON создает короткую ссылку по JSON-запросу с выбором стратегии
func PostHandlerJSON(urlService *shortener.URLService, cfg *config.Config, pub *audit.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ShortenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid JSON body", Code: "invalid_request"})
			return
		}
		if err := validateShortenRequest(req); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: "invalid_request"})
			return
		}

		strategy := shortener.Strategy(req.Strategy)
		length := req.Length
		if length == 0 {
			switch strategy {
			case shortener.Hash:
				length = cfg.HashLength
			case shortener.Random, "":
				length = cfg.SlugLength
			}
		}

		userID := auth.UserID(c)
		res, err := urlService.Shorten(c.Request.Context(), shortener.ShortenRequest{
			URL:      req.URL,
			Strategy: strategy,
			Slug:     req.Slug,
			Length:   length,
			TTL:      time.Duration(req.ExpiresIn) * time.Second,
			UserID:   userID,
		})
		if err != nil {
			publishReject(pub, userID, req.URL, err)
			status, resp := errorResponse(err)
			c.JSON(status, resp)
			return
		}

		status := http.StatusCreated
		if res.Existing {
			status = http.StatusOK
		} else {
			pub.Publish(audit.NewEvent(audit.ActionShorten, userID, res.URL).WithSlug(res.Slug))
		}
		c.JSON(status, model.ShortenResponse{
			Result: shortLink(cfg, res.Slug),
			Slug:   res.Slug,
			URL:    res.URL,
			Title:  res.Title,
		})
	}
}

// CheckHandler проверяет URL без создания ссылки
func CheckHandler(urlService *shortener.URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.URL
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid JSON body", Code: "invalid_request"})
			return
		}

		res := urlService.Check(req.URL)
		resp := model.CheckResponse{
			Valid:         res.Valid,
			NormalizedURL: res.NormalizedURL,
			Title:         res.Title,
		}
		if rej, ok := res.Rejection(); ok {
			resp.Error = rej.Error()
			resp.Code = rej.Code()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// AvailabilityHandler сообщает, свободен ли пользовательский слаг
func AvailabilityHandler(urlService *shortener.URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := urlService.Availability(c.Request.Context(), c.Param("slug"))
		if err != nil {
			status, resp := errorResponse(err)
			c.JSON(status, resp)
			return
		}

		resp := model.AvailabilityResponse{
			Slug:        res.Slug,
			Available:   res.Available,
			Suggestions: res.Suggestions,
		}
		if res.Err != nil {
			resp.Error = res.Err.Error()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetHandler перенаправляет по короткой ссылке
func GetHandler(urlService *shortener.URLService, pub *audit.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("id")

		longURL, err := urlService.Resolve(c.Request.Context(), code)
		switch {
		case errors.Is(err, model.ErrNotFound):
			c.String(http.StatusNotFound, "Short link not found")
			return
		case errors.Is(err, model.ErrExpired):
			c.String(http.StatusGone, "Short link has expired")
			return
		case err != nil:
			logger.Sugar().Errorw("resolve failed", "slug", code, "error", err)
			c.String(http.StatusInternalServerError, "Internal server error")
			return
		}

		pub.Publish(audit.NewEvent(audit.ActionFollow, auth.UserID(c), longURL).WithSlug(code))
		c.Header("Location", longURL)
		c.Status(http.StatusFound)
	}
}

// PingHandler проверяет доступность хранилища
func PingHandler(urlService *shortener.URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := urlService.Ping(c.Request.Context()); err != nil {
			logger.Sugar().Warnw("storage ping failed", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	}
}

func validateShortenRequest(req model.ShortenRequest) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Strategy,
			validation.In(string(shortener.Random), string(shortener.Memorable), string(shortener.Hash), string(shortener.Vanity)).
				Error("must be one of random, memorable, hash, vanity")),
		validation.Field(&req.Slug,
			validation.When(req.Strategy == string(shortener.Vanity), validation.Required.Error("is required for vanity strategy"))),
		validation.Field(&req.Length, validation.Min(0), validation.Max(slug.MaxLength)),
		validation.Field(&req.ExpiresIn, validation.Min(int64(0))),
	)
}

// errorResponse переводит ошибку сервиса в HTTP-статус и тело ответа
func errorResponse(err error) (int, model.ErrorResponse) {
	var (
		rej    *linkcheck.Rejection
		taken  *shortener.TakenError
		vanity *slug.VanityError
	)
	switch {
	case errors.As(err, &rej):
		return http.StatusBadRequest, model.ErrorResponse{Error: rej.Error(), Code: rej.Code()}
	case errors.As(err, &taken):
		return http.StatusConflict, model.ErrorResponse{Error: taken.Error(), Code: "slug_taken", Suggestions: taken.Suggestions}
	case errors.As(err, &vanity):
		return http.StatusBadRequest, model.ErrorResponse{Error: vanity.Error(), Code: vanity.Code()}
	case errors.Is(err, slug.ErrInvalidLength), errors.Is(err, shortener.ErrUnknownStrategy):
		return http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: "invalid_request"}
	case errors.Is(err, slug.ErrExhausted):
		return http.StatusServiceUnavailable, model.ErrorResponse{Error: "Could not allocate a free short link, try again later", Code: "slug_exhausted"}
	}
	logger.Sugar().Errorw("request failed", "error", err)
	return http.StatusInternalServerError, model.ErrorResponse{Error: "Internal server error", Code: "internal"}
}

func publishReject(pub *audit.Publisher, userID, raw string, err error) {
	var rej *linkcheck.Rejection
	if errors.As(err, &rej) {
		pub.Publish(audit.NewEvent(audit.ActionReject, userID, raw).WithReason(rej.Code()))
	}
}

func shortLink(cfg *config.Config, code string) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/" + code
}
