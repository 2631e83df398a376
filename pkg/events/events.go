package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	CameraOnboarded     Type = "camera.onboarded"
	CameraInitialized   Type = "camera.initialized"
	CameraImageUploaded Type = "camera.image_uploaded"
	CameraDeleted       Type = "camera.deleted"
	SensorCreated       Type = "sensor.created"
	SensorUpdated       Type = "sensor.updated"
	SensorDeleted       Type = "sensor.deleted"
	LocationSaved       Type = "location.saved"
)

// Event is emitted after the change it describes has been committed.
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       Type       `json:"type"`
	CameraID   uuid.UUID  `json:"cameraId"`
	SensorID   *uuid.UUID `json:"sensorId,omitempty"`
	SensorType string     `json:"sensorType,omitempty"`
	Data       string     `json:"data,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func New(t Type, cameraID uuid.UUID, at time.Time) Event {
	return Event{ID: uuid.New(), Type: t, CameraID: cameraID, OccurredAt: at}
}

func (e Event) Payload() ([]byte, error) {
	return json.Marshal(e)
}

//go:generate mockgen -source=events.go -destination=mocks/events_mock.go -package=mocks

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans an event out to every publisher and joins their failures.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
