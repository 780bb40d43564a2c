package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/croprec"
	"github.com/agriconnect/agriconnect/internal/domain/diagnosis"
	"github.com/agriconnect/agriconnect/internal/domain/pricing"
	"github.com/agriconnect/agriconnect/internal/domain/weatheradvice"
	apperrors "github.com/agriconnect/agriconnect/pkg/errors"
)

// AIHandler exposes the advisory endpoints.
type AIHandler struct {
	diagnosisSvc diagnosis.Service
	pricingSvc   pricing.Service
	weatherSvc   weatheradvice.Service
	cropRecSvc   croprec.Service
	logger       *slog.Logger
}

// NewAIHandler constructs the advisory handler.
func NewAIHandler(diagnosisSvc diagnosis.Service, pricingSvc pricing.Service, weatherSvc weatheradvice.Service, cropRecSvc croprec.Service, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		diagnosisSvc: diagnosisSvc,
		pricingSvc:   pricingSvc,
		weatherSvc:   weatherSvc,
		cropRecSvc:   cropRecSvc,
		logger:       logger.With("component", "http.ai"),
	}
}

// DiagnoseCrop analyzes a crop photo for disease. The diagnosis flow
// degrades internally, so this endpoint always returns 200 for a
// well-formed request body.
func (h *AIHandler) DiagnoseCrop(c *gin.Context) {
	var req diagnosis.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.diagnosisSvc.Diagnose(c.Request.Context(), req))
}

// PredictPrice forecasts mandi prices for a crop.
func (h *AIHandler) PredictPrice(c *gin.Context) {
	var req pricing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.pricingSvc.Predict(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "prediction_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// WeatherAdvice returns a forecast with farming recommendations.
func (h *AIHandler) WeatherAdvice(c *gin.Context) {
	var req weatheradvice.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.weatherSvc.Advise(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "weather_advice_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecommendCrop proxies the external crop recommendation model.
func (h *AIHandler) RecommendCrop(c *gin.Context) {
	var req croprec.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.cropRecSvc.Recommend(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		code := "recommendation_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, resp)
}
