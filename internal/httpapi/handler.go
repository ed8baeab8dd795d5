package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/logging"
	"github.com/meterwatch/meter-reading-api/internal/service"
	"github.com/meterwatch/meter-reading-api/internal/validator"
)

// errorResponse is the body of every failure response.
type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type confirmResponse struct {
	Success bool `json:"success"`
}

// Handler maps HTTP requests onto the measure workflows.
type Handler struct {
	service   *service.MeasureService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc *service.MeasureService, v *validator.Validator, logger *zap.Logger) *Handler {
	return &Handler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Register wires the measure routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/upload", h.Upload)
	e.PATCH("/confirm", h.Confirm)
	e.GET("/:customer_code/list", h.List)
}

// Upload handles POST /upload.
func (h *Handler) Upload(c echo.Context) error {
	var req validator.UploadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			ErrorCode:        service.CodeInvalidData,
			ErrorDescription: "invalid request body",
		})
	}

	imageBytes, measureTime, err := h.validator.ValidateUpload(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			ErrorCode:        service.CodeInvalidData,
			ErrorDescription: err.Error(),
		})
	}

	result, err := h.service.Upload(c.Request().Context(), service.UploadInput{
		ImageBase64:     req.Image,
		ImageBytes:      imageBytes,
		CustomerCode:    req.CustomerCode,
		MeasureDatetime: measureTime,
		MeasureType:     req.MeasureType,
	})
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// Confirm handles PATCH /confirm.
func (h *Handler) Confirm(c echo.Context) error {
	var req validator.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			ErrorCode:        service.CodeInvalidData,
			ErrorDescription: "invalid request body",
		})
	}

	confirmedValue, err := h.validator.ValidateConfirm(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			ErrorCode:        service.CodeInvalidData,
			ErrorDescription: err.Error(),
		})
	}

	if err := h.service.Confirm(c.Request().Context(), req.MeasureUUID, confirmedValue); err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, confirmResponse{Success: true})
}

// List handles GET /:customer_code/list.
func (h *Handler) List(c echo.Context) error {
	customerCode := c.Param("customer_code")
	measureType := c.QueryParam("measure_type")

	result, err := h.service.List(c.Request().Context(), customerCode, measureType)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// fail translates workflow errors into failure responses. Typed service
// errors carry their own status and code; anything else is a 500.
func (h *Handler) fail(c echo.Context, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.JSON(svcErr.Status, errorResponse{
			ErrorCode:        svcErr.Code,
			ErrorDescription: svcErr.Description,
		})
	}

	reqLogger := logging.WithRequestID(h.logger, c.Response().Header().Get(echo.HeaderXRequestID))
	reqLogger.Error("request failed",
		zap.Error(err),
		zap.String("path", c.Path()),
	)

	return c.JSON(http.StatusInternalServerError, errorResponse{
		ErrorCode:        "INTERNAL_ERROR",
		ErrorDescription: "internal server error",
	})
}
