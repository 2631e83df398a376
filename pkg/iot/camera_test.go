package iot

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	blobmocks "liyu1981.xyz/iot-camera-service/pkg/blob/mocks"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	dbmocks "liyu1981.xyz/iot-camera-service/pkg/db/mocks"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	eventsmocks "liyu1981.xyz/iot-camera-service/pkg/events/mocks"
	"liyu1981.xyz/iot-camera-service/pkg/models"
	_ "liyu1981.xyz/iot-camera-service/pkg/testing"
)

func TestCreateCamera(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	camera, err := iotObj.Camera.CreateCamera(context.Background(), "front-door", "2.4.1")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, camera.ID)
	assert.Equal(t, "front-door", camera.Name)
	assert.Equal(t, "2.4.1", camera.FirmwareVersion)
	assert.True(t, camera.CreatedAt.Equal(testEpoch))
	require.NotNil(t, camera.OnboardedAt)
	assert.True(t, camera.OnboardedAt.Equal(testEpoch))
	assert.False(t, camera.Initialized())
	assert.False(t, camera.HasImage())

	var saved models.Camera
	err = iotObj.Db.Conn.Where("id = ?", camera.ID).First(&saved).Error
	require.NoError(t, err)
	assert.Equal(t, "front-door", saved.Name)
	assert.Nil(t, saved.InitializedAt)
}

func TestCreateCamera_Validation(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	_, err := iotObj.Camera.CreateCamera(context.Background(), "  ", "1.0")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = iotObj.Camera.CreateCamera(context.Background(), "garage", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateCamera_PersistenceFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	repo := dbmocks.NewMockCameraRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	iotObj.CameraRepo = repo

	_, err := iotObj.Camera.CreateCamera(context.Background(), "garage", "1.0")
	assert.ErrorIs(t, err, ErrCameraNotCreated)
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1.0, promCounter(iotObj, "camera.not_created", ""))
}

func TestCreateCamera_LogsAndPublishes(t *testing.T) {
	buf := &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zap.InfoLevel)

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	publisher := eventsmocks.NewMockPublisher(ctrl)
	iotObj.Events = publisher

	var published events.Event
	publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e events.Event) error {
			published = e
			return nil
		}).
		Times(1)

	camera, err := iotObj.Camera.CreateCamera(context.Background(), "porch", "1.0")
	require.NoError(t, err)

	assert.Equal(t, events.CameraOnboarded, published.Type)
	assert.Equal(t, camera.ID, published.CameraID)
	assert.True(t, published.OccurredAt.Equal(testEpoch))
	assert.Equal(t, 1.0, promCounter(iotObj, string(events.CameraOnboarded), ""))

	logs := common.ParseLogs(buf)
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, "Onboarded camera", last["msg"])
	assert.Equal(t, common.LoggerCategoryIOTCamera, last[common.LoggerFieldIOTCategory])
}

func TestCreateCamera_PublishFailureIsNotFatal(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	publisher := eventsmocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker offline"))
	iotObj.Events = publisher

	_, err := iotObj.Camera.CreateCamera(context.Background(), "porch", "1.0")
	assert.NoError(t, err)
}

func TestGetCameraByID(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "hallway")

	camera, err := iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, camera.ID)
	assert.Nil(t, camera.Location)

	_, err = iotObj.Camera.GetCameraByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCameraNotFound)

	_, err = iotObj.Camera.GetCameraByID(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestGetCameraByID_LoadsLocation(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "lobby")
	_, err := iotObj.Location.SetLocation(context.Background(), created.ID, &models.Location{
		Latitude: 52.52, Longitude: 13.40, Address: "Alexanderplatz 1",
	})
	require.NoError(t, err)

	camera, err := iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, camera.Location)
	assert.Equal(t, "Alexanderplatz 1", camera.Location.Address)
}

func TestListCameras(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	clock := iotObj.Clock.(*common.FixedClock)
	clock.Advance(time.Hour)
	first := mustCreateCamera(t, iotObj, "list-a")
	clock.Advance(time.Minute)
	second := mustCreateCamera(t, iotObj, "list-b")

	cameras, err := iotObj.Camera.ListCameras(context.Background())
	require.NoError(t, err)

	ids := common.Mapper(cameras, func(c models.Camera) uuid.UUID { return c.ID })
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)

	var firstAt, secondAt int
	for idx, id := range ids {
		switch id {
		case first.ID:
			firstAt = idx
		case second.ID:
			secondAt = idx
		}
	}
	assert.Less(t, firstAt, secondAt)
}

func TestInitializeCamera(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "attic")
	iotObj.Clock.(*common.FixedClock).Advance(5 * time.Minute)

	camera, err := iotObj.Camera.InitializeCamera(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, camera.InitializedAt)
	assert.True(t, camera.InitializedAt.Equal(testEpoch.Add(5*time.Minute)))

	stored, err := iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Initialized())

	_, err = iotObj.Camera.InitializeCamera(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrCameraAlreadyInitialized)

	_, err = iotObj.Camera.InitializeCamera(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCameraNotFound)

	_, err = iotObj.Camera.InitializeCamera(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestInitializeCamera_LostRace(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	id := uuid.New()
	repo := dbmocks.NewMockCameraRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), id).Return(&models.Camera{ID: id, Name: "race"}, nil)
	repo.EXPECT().MarkInitialized(gomock.Any(), id, testEpoch).Return(false, nil)
	iotObj.CameraRepo = repo

	_, err := iotObj.Camera.InitializeCamera(context.Background(), id)
	assert.ErrorIs(t, err, ErrCameraAlreadyInitialized)
}

func TestInitializeCamera_PersistenceFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	id := uuid.New()
	repo := dbmocks.NewMockCameraRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), id).Return(&models.Camera{ID: id}, nil)
	repo.EXPECT().MarkInitialized(gomock.Any(), id, gomock.Any()).Return(false, errors.New("locked"))
	iotObj.CameraRepo = repo

	_, err := iotObj.Camera.InitializeCamera(context.Background(), id)
	assert.ErrorIs(t, err, ErrCameraNotInitialized)
	assert.NotErrorIs(t, err, ErrCameraAlreadyInitialized)
}

func TestUploadImage(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "yard")
	imageID := "img-" + uuid.NewString()
	data := []byte{0xff, 0xd8, 0xff, 0xe0}

	camera, err := iotObj.Camera.UploadImage(context.Background(), created.ID, imageID, data)
	require.NoError(t, err)
	require.True(t, camera.HasImage())
	assert.Equal(t, imageID, *camera.ImageID)
	assert.Equal(t, testContainer, *camera.ContainerName)
	assert.Equal(t, imageID, *camera.BlobName)

	store := iotObj.Blob.(interface {
		Get(container, name string) ([]byte, bool)
	})
	stored, ok := store.Get(testContainer, imageID)
	require.True(t, ok)
	assert.Equal(t, data, stored)

	reloaded, err := iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, imageID, *reloaded.ImageID)

	_, err = iotObj.Camera.UploadImage(context.Background(), created.ID, "img-other", data)
	assert.ErrorIs(t, err, ErrImageAlreadyUploaded)
}

func TestUploadImage_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "shed")

	_, err := iotObj.Camera.UploadImage(context.Background(), created.ID, "", []byte{1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = iotObj.Camera.UploadImage(context.Background(), created.ID, "img", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = iotObj.Camera.UploadImage(context.Background(), uuid.New(), "img", []byte{1})
	assert.ErrorIs(t, err, ErrCameraNotFound)

	// force the blob store to be nil to cause blob store not available
	iotObj.Blob = nil
	_, err = iotObj.Camera.UploadImage(context.Background(), created.ID, "img", []byte{1})
	assert.ErrorIs(t, err, ErrImageNotUploaded)
	assert.ErrorContains(t, err, "blob store not available")
}

func TestUploadImage_BlobFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "gate")

	uploader := blobmocks.NewMockUploader(ctrl)
	uploader.EXPECT().
		Upload(gomock.Any(), testContainer, "img-1", []byte("jpeg")).
		Return(errors.New("503 server busy"))
	iotObj.Blob = uploader

	_, err := iotObj.Camera.UploadImage(context.Background(), created.ID, "img-1", []byte("jpeg"))
	assert.ErrorIs(t, err, ErrImageNotUploaded)

	reloaded, err := iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.HasImage())
}

func TestUploadImage_LostRace(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	id := uuid.New()
	repo := dbmocks.NewMockCameraRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), id).Return(&models.Camera{ID: id}, nil).Times(2)
	repo.EXPECT().AttachImage(gomock.Any(), id, "img-1", testContainer, "img-1").Return(false, nil)
	iotObj.CameraRepo = repo

	_, err := iotObj.Camera.UploadImage(context.Background(), id, "img-1", []byte("jpeg"))
	assert.ErrorIs(t, err, ErrImageAlreadyUploaded)
}

func TestUploadImage_CameraDeletedDuringUpload(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zap.WarnLevel)

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "porch")

	uploader := blobmocks.NewMockUploader(ctrl)
	uploader.EXPECT().
		Upload(gomock.Any(), testContainer, "img-1", []byte("jpeg")).
		DoAndReturn(func(ctx context.Context, container, name string, data []byte) error {
			return iotObj.Camera.DeleteCamera(ctx, created.ID)
		})
	iotObj.Blob = uploader

	_, err := iotObj.Camera.UploadImage(context.Background(), created.ID, "img-1", []byte("jpeg"))
	assert.ErrorIs(t, err, ErrCameraNotFound)
	assert.NotErrorIs(t, err, ErrImageAlreadyUploaded)

	logs := common.ParseLogs(&buf)
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, "warn", last["level"])
	assert.Equal(t, "img-1", last["blob"])
}

func TestDeleteCamera(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	created := mustCreateCamera(t, iotObj, "basement")
	sensor := mustCreateSensor(t, iotObj, models.SensorTypeMotion, created, "pir")
	_, err := iotObj.Location.SetLocation(context.Background(), created.ID, &models.Location{
		Latitude: 1, Longitude: 2, Address: "Basement",
	})
	require.NoError(t, err)

	err = iotObj.Camera.DeleteCamera(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = iotObj.Camera.GetCameraByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrCameraNotFound)

	var sensors int64
	iotObj.Db.Conn.Model(&models.Sensor{}).Where("id = ?", sensor.ID).Count(&sensors)
	assert.Zero(t, sensors)

	var locations int64
	iotObj.Db.Conn.Model(&models.Location{}).Where("camera_id = ?", created.ID).Count(&locations)
	assert.Zero(t, locations)

	err = iotObj.Camera.DeleteCamera(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrCameraNotFound)
}

func TestDeleteCamera_PersistenceFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	id := uuid.New()
	repo := dbmocks.NewMockCameraRepository(ctrl)
	repo.EXPECT().FindByID(gomock.Any(), id).Return(&models.Camera{ID: id}, nil)
	repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("constraint"))
	iotObj.CameraRepo = repo

	err := iotObj.Camera.DeleteCamera(context.Background(), id)
	assert.ErrorIs(t, err, ErrCameraNotDeleted)
}
