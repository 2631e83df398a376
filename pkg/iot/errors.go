package iot

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID  = errors.New("invalid identifier")
	ErrValidation = errors.New("validation failed")

	ErrCameraNotFound           = errors.New("camera not found")
	ErrCameraNotCreated         = errors.New("camera not created")
	ErrCameraAlreadyInitialized = errors.New("camera already initialized")
	ErrCameraNotInitialized     = errors.New("camera not initialized")
	ErrCameraNotDeleted         = errors.New("camera not deleted")

	ErrImageAlreadyUploaded = errors.New("image already uploaded")
	ErrImageNotUploaded     = errors.New("image not uploaded")

	ErrUnknownSensorKind = errors.New("unknown sensor kind")
	ErrSensorMismatch    = errors.New("sensor type mismatch")
	ErrSensorNotFound    = errors.New("sensor not found")
	ErrSensorNotCreated  = errors.New("sensor not created")
	ErrSensorNotUpdated  = errors.New("sensor not updated")

	ErrLocationNotFound = errors.New("location not found")
	ErrLocationNotSaved = errors.New("location not saved")
)

// wrap tags cause with kind so that errors.Is matches both.
func wrap(kind error, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// passThrough lets an already classified error out unchanged and tags anything else with kind.
func passThrough(kind error, err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return wrap(kind, err)
}
