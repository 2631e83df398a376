// Package api holds the JSON shapes shared by the REST server, the gRPC server and the client.
package api

import (
	"time"

	"github.com/google/uuid"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

type OnboardRequest struct {
	CameraName      string `json:"cameraName"`
	FirmwareVersion string `json:"firmwareVersion"`
}

type OnboardResponse struct {
	CameraID        uuid.UUID `json:"cameraId"`
	CameraName      string    `json:"cameraName"`
	FirmwareVersion string    `json:"firmwareVersion"`
}

type Camera struct {
	CameraID        uuid.UUID  `json:"cameraId"`
	CameraName      string     `json:"cameraName"`
	FirmwareVersion string     `json:"firmwareVersion"`
	CreatedAt       time.Time  `json:"createdAt"`
	OnboardedAt     *time.Time `json:"onboardedAt,omitempty"`
	InitializedAt   *time.Time `json:"initializedAt,omitempty"`
	ImageID         *string    `json:"imageId,omitempty"`
	ContainerName   *string    `json:"containerName,omitempty"`
	BlobName        *string    `json:"blobName,omitempty"`
	Location        *Location  `json:"location,omitempty"`
}

type SensorRequest struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	SensorType string `json:"sensorType"`
	Data       string `json:"data"`
}

type Sensor struct {
	SensorID   uuid.UUID `json:"sensorId"`
	CameraID   uuid.UUID `json:"cameraId"`
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	SensorType string    `json:"sensorType"`
	Data       string    `json:"data"`
}

type LocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type Location struct {
	LocationID uuid.UUID `json:"locationId"`
	CameraID   uuid.UUID `json:"cameraId"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address"`
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func OnboardResponseFromModel(c *models.Camera) OnboardResponse {
	return OnboardResponse{
		CameraID:        c.ID,
		CameraName:      c.Name,
		FirmwareVersion: c.FirmwareVersion,
	}
}

func CameraFromModel(c *models.Camera) Camera {
	camera := Camera{
		CameraID:        c.ID,
		CameraName:      c.Name,
		FirmwareVersion: c.FirmwareVersion,
		CreatedAt:       c.CreatedAt,
		OnboardedAt:     c.OnboardedAt,
		InitializedAt:   c.InitializedAt,
		ImageID:         c.ImageID,
		ContainerName:   c.ContainerName,
		BlobName:        c.BlobName,
	}
	if c.Location != nil {
		camera.Location = common.Ptr(LocationFromModel(c.Location))
	}
	return camera
}

func CamerasFromModels(cameras []models.Camera) []Camera {
	return common.Mapper(cameras, func(c models.Camera) Camera { return CameraFromModel(&c) })
}

func SensorFromModel(s *models.Sensor) Sensor {
	return Sensor{
		SensorID:   s.ID,
		CameraID:   s.CameraID,
		Name:       s.Name,
		Version:    s.Version,
		SensorType: string(s.SensorType),
		Data:       s.Data,
	}
}

func SensorsFromModels(sensors []models.Sensor) []Sensor {
	return common.Mapper(sensors, func(s models.Sensor) Sensor { return SensorFromModel(&s) })
}

func LocationFromModel(l *models.Location) Location {
	return Location{
		LocationID: l.ID,
		CameraID:   l.CameraID,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		Address:    l.Address,
	}
}
