package iot

import (
	"fmt"

	"liyu1981.xyz/iot-camera-service/pkg/models"
)

// SensorDraft is a sensor payload as a client sends it, before its kind is checked.
type SensorDraft struct {
	Name       string
	Version    string
	SensorType string
	Data       string
}

// ResolveSensorKind maps a route segment such as "motion" to its sensor kind.
func ResolveSensorKind(path string) (models.SensorType, error) {
	kind, ok := models.ParseSensorType(path)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSensorKind, path)
	}
	return kind, nil
}

// ResolveSensor checks that the draft's type tag names kind and builds the sensor for it.
// A tag for another kind is rejected, never coerced.
func ResolveSensor(kind models.SensorType, draft SensorDraft) (*models.Sensor, error) {
	tag, ok := models.ParseSensorType(draft.SensorType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sensor type %q", ErrSensorMismatch, draft.SensorType)
	}
	if tag != kind {
		return nil, fmt.Errorf("%w: %s payload sent to %s endpoint", ErrSensorMismatch, tag, kind.Path())
	}

	return &models.Sensor{
		Name:       draft.Name,
		Version:    draft.Version,
		Data:       draft.Data,
		SensorType: kind,
	}, nil
}
