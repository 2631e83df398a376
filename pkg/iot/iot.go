package iot

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/blob"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	"liyu1981.xyz/iot-camera-service/pkg/metrics"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

//go:generate mockgen -source=iot.go -destination=mocks/iot_mock.go -package=mocks

type ICamera interface {
	CreateCamera(ctx context.Context, name, firmwareVersion string) (*models.Camera, error)
	InitializeCamera(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error)
	GetCameraByID(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error)
	ListCameras(ctx context.Context) ([]models.Camera, error)
	UploadImage(ctx context.Context, cameraID uuid.UUID, imageID string, data []byte) (*models.Camera, error)
	DeleteCamera(ctx context.Context, cameraID uuid.UUID) error
}

// ISensor serves one sensor kind.
type ISensor interface {
	Kind() models.SensorType
	CreateSensor(ctx context.Context, cameraID uuid.UUID, draft *models.Sensor) (*models.Sensor, error)
	ListSensorsByCamera(ctx context.Context, cameraID uuid.UUID) ([]models.Sensor, error)
	UpdateSensor(ctx context.Context, cameraID, sensorID uuid.UUID, patch *models.Sensor) (*models.Sensor, error)
	GetSensorByID(ctx context.Context, sensorID uuid.UUID) (*models.Sensor, error)
	DeleteSensor(ctx context.Context, cameraID, sensorID uuid.UUID) error
}

type ILocation interface {
	SetLocation(ctx context.Context, cameraID uuid.UUID, draft *models.Location) (*models.Location, error)
	GetLocation(ctx context.Context, cameraID uuid.UUID) (*models.Location, error)
}

type IOT struct {
	Db    db.DB
	Clock common.Clock

	Blob          blob.Uploader
	BlobContainer string
	Events        events.Publisher
	Metrics       metrics.Sink

	// Limiters, when set, drops the bucket of every deleted camera.
	Limiters *RateLimiterStore

	CameraRepo   db.CameraRepository
	LocationRepo db.LocationRepository
	SensorRepos  map[models.SensorType]db.SensorRepository

	Camera   ICamera
	Location ILocation
	Sensors  map[models.SensorType]ISensor
}

type ServiceOpts struct {
	Camera   ICamera
	Location ILocation
	Sensors  map[models.SensorType]ISensor
}

func (i *IOT) WithServices(opts ServiceOpts) *IOT {
	if opts.Camera != nil {
		i.Camera = opts.Camera
	}
	if opts.Location != nil {
		i.Location = opts.Location
	}
	for kind, s := range opts.Sensors {
		if s == nil {
			continue
		}
		if i.Sensors == nil {
			i.Sensors = make(map[models.SensorType]ISensor, len(models.SensorTypes))
		}
		i.Sensors[kind] = s
	}
	return i
}

// WithDefaultServices wires the built-in implementation for every service not set yet.
func (i *IOT) WithDefaultServices() *IOT {
	opts := ServiceOpts{Sensors: map[models.SensorType]ISensor{}}
	if i.Camera == nil {
		opts.Camera = i.GetICamera()
	}
	if i.Location == nil {
		opts.Location = i.GetILocation()
	}
	for _, kind := range models.SensorTypes {
		if _, ok := i.Sensors[kind]; !ok {
			opts.Sensors[kind] = i.GetISensor(kind)
		}
	}
	return i.WithServices(opts)
}

// Sensor returns the service for kind.
func (i *IOT) Sensor(kind models.SensorType) (ISensor, error) {
	if s, ok := i.Sensors[kind]; ok && s != nil {
		return s, nil
	}
	return nil, ErrUnknownSensorKind
}

func (i *IOT) clock() common.Clock {
	if i.Clock == nil {
		return common.SystemClock{}
	}
	return i.Clock
}

func (i *IOT) cameras() db.CameraRepository {
	if i.CameraRepo != nil {
		return i.CameraRepo
	}
	return db.NewCameraRepository(&i.Db)
}

func (i *IOT) locations() db.LocationRepository {
	if i.LocationRepo != nil {
		return i.LocationRepo
	}
	return db.NewLocationRepository(&i.Db)
}

func (i *IOT) sensorsOf(kind models.SensorType) db.SensorRepository {
	if repo, ok := i.SensorRepos[kind]; ok && repo != nil {
		return repo
	}
	return db.NewSensorRepository(&i.Db, kind)
}

// cameraService is what sensor and location work resolves owners through.
func (i *IOT) cameraService() ICamera {
	if i.Camera == nil {
		return i.GetICamera()
	}
	return i.Camera
}

// notify counts and publishes an event. Publishing failures are logged, the change is already committed.
func (i *IOT) notify(ctx context.Context, event events.Event) {
	if i.Metrics != nil {
		i.Metrics.Inc(string(event.Type), event.SensorType)
	}
	if i.Events == nil {
		return
	}
	if err := i.Events.Publish(ctx, event); err != nil {
		common.GetLoggerWith(common.LoggerNameEvents).Warn("Event not published",
			zap.String("type", string(event.Type)),
			zap.String("camera_id", event.CameraID.String()),
			zap.Error(err),
		)
	}
}

func (i *IOT) countFailure(name string, kind models.SensorType) {
	if i.Metrics != nil {
		i.Metrics.Inc(name, string(kind))
	}
}
