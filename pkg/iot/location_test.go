package iot

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/models"
	_ "liyu1981.xyz/iot-camera-service/pkg/testing"
)

func TestSetLocation(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	camera := mustCreateCamera(t, iotObj, "geo")

	first, err := iotObj.Location.SetLocation(context.Background(), camera.ID, &models.Location{
		Latitude: 48.8584, Longitude: 2.2945, Address: "Champ de Mars",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, camera.ID, first.CameraID)

	second, err := iotObj.Location.SetLocation(context.Background(), camera.ID, &models.Location{
		Latitude: 48.8606, Longitude: 2.3376, Address: "Rue de Rivoli",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := iotObj.Location.GetLocation(context.Background(), camera.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rue de Rivoli", got.Address)
	assert.InDelta(t, 48.8606, got.Latitude, 1e-9)

	var count int64
	iotObj.Db.Conn.Model(&models.Location{}).Where("camera_id = ?", camera.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSetLocation_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	camera := mustCreateCamera(t, iotObj, "geo-edge")

	invalid := []*models.Location{
		nil,
		{Latitude: 91, Longitude: 0, Address: "North of north"},
		{Latitude: 0, Longitude: -181, Address: "West of west"},
		{Latitude: 0, Longitude: 0, Address: " "},
		{Latitude: 0, Longitude: 0, Address: strings.Repeat("a", 256)},
	}
	for _, draft := range invalid {
		_, err := iotObj.Location.SetLocation(context.Background(), camera.ID, draft)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := iotObj.Location.SetLocation(context.Background(), uuid.New(), &models.Location{Address: "Nowhere"})
	assert.ErrorIs(t, err, ErrCameraNotFound)
}

func TestGetLocation(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, false)
	defer ctrl.Finish()

	camera := mustCreateCamera(t, iotObj, "no-geo")

	_, err := iotObj.Location.GetLocation(context.Background(), camera.ID)
	assert.ErrorIs(t, err, ErrLocationNotFound)

	_, err = iotObj.Location.GetLocation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCameraNotFound)
}
