package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
)

const (
	CodeInvalidID                = "INVALID_ID"
	CodeValidation               = "VALIDATION_FAILED"
	CodeSensorMismatch           = "SENSOR_TYPE_MISMATCH"
	CodeUnknownSensorKind        = "UNKNOWN_SENSOR_KIND"
	CodeCameraNotFound           = "CAMERA_NOT_FOUND"
	CodeSensorNotFound           = "SENSOR_NOT_FOUND"
	CodeLocationNotFound         = "LOCATION_NOT_FOUND"
	CodeCameraAlreadyInitialized = "CAMERA_ALREADY_INITIALIZED"
	CodeImageAlreadyUploaded     = "IMAGE_ALREADY_UPLOADED"
	CodeCameraNotCreated         = "CAMERA_NOT_CREATED"
	CodeCameraNotInitialized     = "CAMERA_NOT_INITIALIZED"
	CodeCameraNotDeleted         = "CAMERA_NOT_DELETED"
	CodeImageNotUploaded         = "IMAGE_NOT_UPLOADED"
	CodeSensorNotCreated         = "SENSOR_NOT_CREATED"
	CodeSensorNotUpdated         = "SENSOR_NOT_UPDATED"
	CodeLocationNotSaved         = "LOCATION_NOT_SAVED"
	CodeRateLimited              = "RATE_LIMITED"
	CodeImageTooLarge            = "IMAGE_TOO_LARGE"
	CodeInternal                 = "INTERNAL_ERROR"
)

type errorMapping struct {
	kind   error
	status int
	code   string
}

// errorTable is checked in order; the first kind matched with errors.Is wins.
var errorTable = []errorMapping{
	{iot.ErrInvalidID, http.StatusBadRequest, CodeInvalidID},
	{iot.ErrValidation, http.StatusBadRequest, CodeValidation},
	{iot.ErrSensorMismatch, http.StatusBadRequest, CodeSensorMismatch},
	{iot.ErrUnknownSensorKind, http.StatusNotFound, CodeUnknownSensorKind},
	{iot.ErrCameraNotFound, http.StatusNotFound, CodeCameraNotFound},
	{iot.ErrSensorNotFound, http.StatusNotFound, CodeSensorNotFound},
	{iot.ErrLocationNotFound, http.StatusNotFound, CodeLocationNotFound},
	{iot.ErrCameraAlreadyInitialized, http.StatusConflict, CodeCameraAlreadyInitialized},
	{iot.ErrImageAlreadyUploaded, http.StatusConflict, CodeImageAlreadyUploaded},
	{iot.ErrCameraNotCreated, http.StatusInternalServerError, CodeCameraNotCreated},
	{iot.ErrCameraNotInitialized, http.StatusInternalServerError, CodeCameraNotInitialized},
	{iot.ErrCameraNotDeleted, http.StatusInternalServerError, CodeCameraNotDeleted},
	{iot.ErrImageNotUploaded, http.StatusInternalServerError, CodeImageNotUploaded},
	{iot.ErrSensorNotCreated, http.StatusInternalServerError, CodeSensorNotCreated},
	{iot.ErrSensorNotUpdated, http.StatusInternalServerError, CodeSensorNotUpdated},
	{iot.ErrLocationNotSaved, http.StatusInternalServerError, CodeLocationNotSaved},
}

func statusFor(err error) (int, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.kind) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		common.GetLoggerWith(common.LoggerNameRestfulServer).Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("code", code),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, api.Error{Status: status, Code: code, Message: err.Error()})
}

func respondValidation(c *gin.Context, message string, details any) {
	c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: message,
		Details: details,
	})
}

