package iot

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/iot-camera-service/pkg/blob"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	"liyu1981.xyz/iot-camera-service/pkg/iot/mocks"
	"liyu1981.xyz/iot-camera-service/pkg/metrics"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

const testContainer = "camera-images"

var testEpoch = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func GetMockIOTWithMemorySqliteDialector(t *testing.T, useMockICamera bool) (
	*gomock.Controller,
	*IOT,
	*mocks.MockICamera,
) {
	ctrl := gomock.NewController(t)

	mockICamera := mocks.NewMockICamera(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	iotInstance := &IOT{
		Db:            *dbInstance,
		Clock:         &common.FixedClock{At: testEpoch},
		Blob:          blob.NewMemoryStore(),
		BlobContainer: testContainer,
		Events:        events.Nop{},
		Metrics:       metrics.NewPrometheus(),
	}

	cameraService := iotInstance.GetICamera()
	if useMockICamera {
		cameraService = mockICamera
	}

	iotInstance.WithServices(ServiceOpts{Camera: cameraService}).WithDefaultServices()

	return ctrl, iotInstance, mockICamera
}

func mustCreateCamera(t *testing.T, i *IOT, name string) *models.Camera {
	t.Helper()
	camera, err := i.GetICamera().CreateCamera(context.Background(), name, "1.0.0")
	require.NoError(t, err)
	return camera
}

func mustCreateSensor(t *testing.T, i *IOT, kind models.SensorType, camera *models.Camera, name string) *models.Sensor {
	t.Helper()
	sensor, err := i.GetISensor(kind).CreateSensor(context.Background(), camera.ID, &models.Sensor{
		Name:    name,
		Version: "v1",
		Data:    "{}",
	})
	require.NoError(t, err)
	return sensor
}

func promCounter(i *IOT, event string, kind string) float64 {
	return testutil.ToFloat64(i.Metrics.(*metrics.Prometheus).Counter(event, kind))
}
