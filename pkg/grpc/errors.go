package grpc

import (
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
)

var errorCodes = []struct {
	kind error
	code codes.Code
}{
	{iot.ErrInvalidID, codes.InvalidArgument},
	{iot.ErrValidation, codes.InvalidArgument},
	{iot.ErrSensorMismatch, codes.InvalidArgument},
	{iot.ErrUnknownSensorKind, codes.NotFound},
	{iot.ErrCameraNotFound, codes.NotFound},
	{iot.ErrSensorNotFound, codes.NotFound},
	{iot.ErrLocationNotFound, codes.NotFound},
	{iot.ErrCameraAlreadyInitialized, codes.AlreadyExists},
	{iot.ErrImageAlreadyUploaded, codes.AlreadyExists},
}

func codeFor(err error) codes.Code {
	for _, m := range errorCodes {
		if errors.Is(err, m.kind) {
			return m.code
		}
	}
	return codes.Internal
}

func toStatus(method string, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		common.GetLoggerWith(common.LoggerNameGrpcServer).Error("Call failed",
			zap.String("method", method),
			zap.Error(err),
		)
	}
	return status.Error(code, err.Error())
}
