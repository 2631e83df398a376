package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SensorType string

const (
	SensorTypeMotion      SensorType = "MOTION"
	SensorTypeLight       SensorType = "LIGHT"
	SensorTypeTemperature SensorType = "TEMPERATURE"
)

// SensorTypes lists every sensor variant stored in the sensors table.
var SensorTypes = []SensorType{SensorTypeMotion, SensorTypeLight, SensorTypeTemperature}

func (t SensorType) Valid() bool {
	switch t {
	case SensorTypeMotion, SensorTypeLight, SensorTypeTemperature:
		return true
	}
	return false
}

// Path is the lowercase form used in REST routes, e.g. "motion".
func (t SensorType) Path() string {
	return strings.ToLower(string(t))
}

// ParseSensorType accepts either the discriminator ("MOTION") or the route form ("motion").
func ParseSensorType(s string) (SensorType, bool) {
	t := SensorType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

type Camera struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"not null"`
	FirmwareVersion string    `gorm:"not null"`

	ImageID       *string
	ContainerName *string
	BlobName      *string

	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false;index"`
	OnboardedAt   *time.Time
	InitializedAt *time.Time

	Location *Location `gorm:"foreignKey:CameraID;constraint:OnDelete:CASCADE"`
	Sensors  []Sensor  `gorm:"foreignKey:CameraID;constraint:OnDelete:CASCADE"`
}

func (c *Camera) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Camera) Initialized() bool {
	return c.InitializedAt != nil
}

func (c *Camera) HasImage() bool {
	return c.ImageID != nil && *c.ImageID != ""
}

type Sensor struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CameraID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name       string     `gorm:"not null"`
	Version    string
	Data       string
	SensorType SensorType `gorm:"type:varchar(20);not null;index;check:sensor_type IN ('MOTION','LIGHT','TEMPERATURE')"`
}

func (s *Sensor) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Location keeps only the owning camera's id, never the camera itself.
type Location struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CameraID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Address   string    `gorm:"size:255;not null"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
