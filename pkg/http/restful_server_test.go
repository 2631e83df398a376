package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/iot-camera-service/pkg/iot/mocks"
	_ "liyu1981.xyz/iot-camera-service/pkg/testing"

	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/blob"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
	"liyu1981.xyz/iot-camera-service/pkg/metrics"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

func newTestIOT() *iot.IOT {
	iotObj := &iot.IOT{
		Db:            *db.GetInstance(db.UseMemorySqliteDialector()),
		Clock:         common.SystemClock{},
		Blob:          blob.NewMemoryStore(),
		BlobContainer: "camera-images",
		Events:        events.Nop{},
		Metrics:       metrics.Nop{},
	}
	return iotObj.WithDefaultServices()
}

func setupTestServer() *RestfulServer {
	return setupTestServerWithLimiter(nil)
}

func setupTestServerWithLimiter(limiter *iot.RateLimiterStore) *RestfulServer {
	gin.SetMode(gin.TestMode)

	iotObj := newTestIOT()
	iotObj.Limiters = limiter
	rs := &RestfulServer{
		Server:           gin.New(),
		Iot:              iotObj,
		RateLimiterStore: limiter,
	}

	rs.Setup()

	return rs
}

func doJSON(rs *RestfulServer, method string, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func onboard(t *testing.T, rs *RestfulServer, name string) api.OnboardResponse {
	t.Helper()
	w := doJSON(rs, http.MethodPost, "/v1/onboard", api.OnboardRequest{
		CameraName:      name,
		FirmwareVersion: "2.4.1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.OnboardResponse](t, w)
}

func uploadRequest(path string, imageID string, data []byte) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if imageID != "" {
		_ = mw.WriteField("imageId", imageID)
	}
	if data != nil {
		part, _ := mw.CreateFormFile("data", "frame.jpg")
		_, _ = part.Write(data)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	w := doJSON(rs, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	common.SetTestLoggerNop()

	sink := metrics.NewPrometheus()
	gin.SetMode(gin.TestMode)
	i := newTestIOT()
	i.Metrics = sink
	rs := &RestfulServer{Server: gin.New(), Iot: i, Metrics: sink.Handler()}
	rs.Setup()

	onboard(t, rs, "metrics-cam")

	w := doJSON(rs, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `iot_camera_service_lifecycle_events_total{event="camera.onboarded"`)
}

func TestMetricsEndpoint_NotMountedWithoutHandler(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	w := doJSON(rs, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOnboardCamera(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	w := doJSON(rs, http.MethodPost, "/v1/onboard", `{"cameraName":"lobby","firmwareVersion":"2.4.1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, 3)
	assert.Equal(t, "lobby", body["cameraName"])
	assert.Equal(t, "2.4.1", body["firmwareVersion"])
	_, err := uuid.Parse(body["cameraId"].(string))
	assert.NoError(t, err)
}

func TestOnboardCamera_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	{
		// empty payload should be rejected
		w := doJSON(rs, http.MethodPost, "/v1/onboard", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decode[api.Error](t, w)
		assert.Equal(t, CodeValidation, apiErr.Code)
		assert.NotNil(t, apiErr.Details)
	}

	{
		// blank name is not a name
		w := doJSON(rs, http.MethodPost, "/v1/onboard", `{"cameraName":"   ","firmwareVersion":"1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// numbers are not coerced into names
		w := doJSON(rs, http.MethodPost, "/v1/onboard", `{"cameraName":5,"firmwareVersion":"1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		apiErr := decode[api.Error](t, w)
		assert.Equal(t, CodeValidation, apiErr.Code)
		assert.Contains(t, apiErr.Details, "cameraName")
	}

	{
		w := doJSON(rs, http.MethodPost, "/v1/onboard", `{"cameraName":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[api.Error](t, w).Code)
	}

	{
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockICamera := mocks.NewMockICamera(ctrl)
		rs.Iot.Camera = mockICamera
		mockICamera.EXPECT().
			CreateCamera(gomock.Any(), gomock.Eq("lobby"), gomock.Eq("1")).
			Return(nil, fmt.Errorf("%w: disk full", iot.ErrCameraNotCreated)).
			Times(1)

		w := doJSON(rs, http.MethodPost, "/v1/onboard", api.OnboardRequest{CameraName: "lobby", FirmwareVersion: "1"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, CodeCameraNotCreated, decode[api.Error](t, w).Code)
	}
}

func TestInitializeCamera(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "dock")

	w := doJSON(rs, http.MethodPatch, "/v1/"+created.CameraID.String()+"/initialize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	camera := decode[api.Camera](t, w)
	require.NotNil(t, camera.InitializedAt)

	w = doJSON(rs, http.MethodPatch, "/v1/"+created.CameraID.String()+"/initialize", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeCameraAlreadyInitialized, decode[api.Error](t, w).Code)

	w = doJSON(rs, http.MethodGet, "/v1/camera/"+created.CameraID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, camera.InitializedAt.Equal(*decode[api.Camera](t, w).InitializedAt))
}

func TestInitializeCamera_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()

	{
		w := doJSON(rs, http.MethodPatch, "/v1/"+uuid.NewString()+"/initialize", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeCameraNotFound, decode[api.Error](t, w).Code)
	}

	{
		w := doJSON(rs, http.MethodPatch, "/v1/not-a-uuid/initialize", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeInvalidID, decode[api.Error](t, w).Code)
	}
}

func TestGetAndListCameras(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "garage")

	w := doJSON(rs, http.MethodGet, "/v1/camera/"+created.CameraID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	camera := decode[api.Camera](t, w)
	assert.Equal(t, "garage", camera.CameraName)
	assert.NotNil(t, camera.OnboardedAt)
	assert.Nil(t, camera.InitializedAt)
	assert.Nil(t, camera.Location)

	w = doJSON(rs, http.MethodGet, "/v1/camera", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cameras := decode[[]api.Camera](t, w)
	assert.Contains(t, common.Mapper(cameras, func(c api.Camera) uuid.UUID { return c.CameraID }), created.CameraID)

	w = doJSON(rs, http.MethodGet, "/v1/camera/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(rs, http.MethodGet, "/v1/camera/123", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCamera(t *testing.T) {
	common.SetTestLoggerNop()

	limiter := iot.NewRateLimiterStore(100, 100)
	rs := setupTestServerWithLimiter(limiter)
	created := onboard(t, rs, "porch")
	cameraPath := "/v1/camera/" + created.CameraID.String()

	w := doJSON(rs, http.MethodPost, cameraPath+"/sensor/motion", api.SensorRequest{
		Name: "pir", Version: "1", SensorType: "MOTION", Data: "{}",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sensor := decode[api.Sensor](t, w)
	require.Equal(t, 1, limiter.Len())

	w = doJSON(rs, http.MethodDelete, cameraPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, limiter.Len())

	w = doJSON(rs, http.MethodGet, cameraPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, rs.Iot.Db.Conn.Model(&models.Sensor{}).Where("id = ?", sensor.SensorID).Count(&count).Error)
	assert.Zero(t, count)

	w = doJSON(rs, http.MethodDelete, cameraPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadImage(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	store := rs.Iot.Blob.(*blob.MemoryStore)
	created := onboard(t, rs, "gate")
	path := "/v1/camera/" + created.CameraID.String() + "/upload_image"

	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, uploadRequest(path, "img-001", []byte("jpeg-bytes")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	camera := decode[api.Camera](t, w)
	require.NotNil(t, camera.ImageID)
	assert.Equal(t, "img-001", *camera.ImageID)
	assert.Equal(t, "camera-images", *camera.ContainerName)

	data, ok := store.Get("camera-images", *camera.BlobName)
	require.True(t, ok)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, uploadRequest(path, "img-002", []byte("again")))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeImageAlreadyUploaded, decode[api.Error](t, w).Code)
}

func TestUploadImage_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "yard")
	path := "/v1/camera/" + created.CameraID.String() + "/upload_image"

	{
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, uploadRequest(path, "", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, uploadRequest(path, "img", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, uploadRequest("/v1/camera/"+uuid.NewString()+"/upload_image", "img", []byte("x")))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestUploadImage_TooLarge(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "gate")
	path := "/v1/camera/" + created.CameraID.String() + "/upload_image"

	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, uploadRequest(path, "img-big", bytes.Repeat([]byte{1}, maxImageBytes+1<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, CodeImageTooLarge, decode[api.Error](t, w).Code)

	w = doJSON(rs, http.MethodGet, "/v1/camera/"+created.CameraID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[api.Camera](t, w).ImageID)
}

func TestLocation(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "roof")
	path := "/v1/camera/" + created.CameraID.String() + "/location"

	w := doJSON(rs, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(rs, http.MethodPut, path, api.LocationRequest{Latitude: 52.52, Longitude: 13.405, Address: "Alexanderplatz 1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[api.Location](t, w)
	assert.Equal(t, created.CameraID, first.CameraID)

	w = doJSON(rs, http.MethodPut, path, api.LocationRequest{Latitude: 48.1, Longitude: 11.5, Address: "Marienplatz 8"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.LocationID, decode[api.Location](t, w).LocationID)

	w = doJSON(rs, http.MethodGet, "/v1/camera/"+created.CameraID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	camera := decode[api.Camera](t, w)
	require.NotNil(t, camera.Location)
	assert.Equal(t, "Marienplatz 8", camera.Location.Address)

	w = doJSON(rs, http.MethodPut, path, api.LocationRequest{Latitude: 91, Longitude: 11.5, Address: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, http.MethodPut, path, api.LocationRequest{Latitude: 48.1, Longitude: 11.5, Address: strings.Repeat("a", 256)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSensorLifecycle(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "hall")
	base := "/v1/camera/" + created.CameraID.String() + "/sensor/light"

	w := doJSON(rs, http.MethodPost, base, api.SensorRequest{
		Name: "lux", Version: "1", SensorType: "LIGHT", Data: `{"lux":300}`,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sensor := decode[api.Sensor](t, w)
	assert.Equal(t, "LIGHT", sensor.SensorType)
	assert.Equal(t, created.CameraID, sensor.CameraID)

	w = doJSON(rs, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sensors := decode[[]api.Sensor](t, w)
	require.Len(t, sensors, 1)
	assert.Equal(t, sensor.SensorID, sensors[0].SensorID)

	w = doJSON(rs, http.MethodGet, base+"/"+sensor.SensorID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lux", decode[api.Sensor](t, w).Name)

	w = doJSON(rs, http.MethodPut, base+"/"+sensor.SensorID.String(), api.SensorRequest{
		Name: "lux-2", Version: "2", SensorType: "light", Data: `{"lux":500}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[api.Sensor](t, w)
	assert.Equal(t, "lux-2", updated.Name)
	assert.Equal(t, "2", updated.Version)

	w = doJSON(rs, http.MethodDelete, base+"/"+sensor.SensorID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(rs, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateSensor_TypeMismatch(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "shed")
	cameraPath := "/v1/camera/" + created.CameraID.String()

	w := doJSON(rs, http.MethodPost, cameraPath+"/sensor/light", api.SensorRequest{
		Name: "pir", Version: "1", SensorType: "MOTION", Data: "{}",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeSensorMismatch, decode[api.Error](t, w).Code)

	for _, kind := range []string{"light", "motion"} {
		w = doJSON(rs, http.MethodGet, cameraPath+"/sensor/"+kind, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String(), kind)
	}
}

func TestSensor_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	owner := onboard(t, rs, "owner")
	other := onboard(t, rs, "other")

	w := doJSON(rs, http.MethodPost, "/v1/camera/"+owner.CameraID.String()+"/sensor/temperature", api.SensorRequest{
		Name: "thermo", Version: "1", SensorType: "TEMPERATURE", Data: `{"c":21}`,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sensor := decode[api.Sensor](t, w)
	foreign := "/v1/camera/" + other.CameraID.String() + "/sensor/temperature/" + sensor.SensorID.String()

	{
		// another camera cannot see, update or delete the sensor
		w = doJSON(rs, http.MethodGet, foreign, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(rs, http.MethodPut, foreign, api.SensorRequest{Name: "x", SensorType: "TEMPERATURE"})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(rs, http.MethodDelete, foreign, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeSensorNotFound, decode[api.Error](t, w).Code)

		w = doJSON(rs, http.MethodGet, "/v1/camera/"+owner.CameraID.String()+"/sensor/temperature/"+sensor.SensorID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	{
		w = doJSON(rs, http.MethodGet, "/v1/camera/"+owner.CameraID.String()+"/sensor/humidity", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeUnknownSensorKind, decode[api.Error](t, w).Code)
	}

	{
		w = doJSON(rs, http.MethodPost, "/v1/camera/"+uuid.NewString()+"/sensor/motion", api.SensorRequest{
			Name: "pir", SensorType: "MOTION",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeCameraNotFound, decode[api.Error](t, w).Code)
	}

	{
		w = doJSON(rs, http.MethodPost, "/v1/camera/"+owner.CameraID.String()+"/sensor/motion", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, decode[api.Error](t, w).Code)
	}

	{
		w = doJSON(rs, http.MethodDelete, "/v1/camera/"+owner.CameraID.String()+"/sensor/temperature/nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestSensor_NonStringFields(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	created := onboard(t, rs, "hall")
	sensorPath := "/v1/camera/" + created.CameraID.String() + "/sensor/light"

	bodies := map[string]string{
		"data":    `{"name":"lux","version":"1","sensorType":"LIGHT","data":{"lux":3}}`,
		"name":    `{"name":7,"version":"1","sensorType":"LIGHT","data":"{}"}`,
		"version": `{"name":"lux","version":2,"sensorType":"LIGHT","data":"{}"}`,
	}
	for field, body := range bodies {
		t.Run(field, func(t *testing.T) {
			w := doJSON(rs, http.MethodPost, sensorPath, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			apiErr := decode[api.Error](t, w)
			assert.Equal(t, CodeValidation, apiErr.Code)
			assert.Contains(t, apiErr.Details, field)
		})
	}

	w := doJSON(rs, http.MethodPost, sensorPath, "[1,2]")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, http.MethodGet, sensorPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]api.Sensor](t, w))

	w = doJSON(rs, http.MethodPost, sensorPath, api.SensorRequest{
		Name: "lux", Version: "1", SensorType: "LIGHT", Data: `{"lux":3}`,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sensor := decode[api.Sensor](t, w)

	w = doJSON(rs, http.MethodPut, sensorPath+"/"+sensor.SensorID.String(), bodies["data"])
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(rs, http.MethodGet, sensorPath+"/"+sensor.SensorID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"lux":3}`, decode[api.Sensor](t, w).Data)
}

func TestListSensors_ServiceError(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer()
	cameraID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockISensor := mocks.NewMockISensor(ctrl)
	mockISensor.EXPECT().Kind().Return(models.SensorTypeMotion).AnyTimes()
	mockISensor.EXPECT().
		ListSensorsByCamera(gomock.Any(), gomock.Eq(cameraID)).
		Return(nil, fmt.Errorf("just causing error")).
		Times(1)
	rs.Iot.WithServices(iot.ServiceOpts{Sensors: map[models.SensorType]iot.ISensor{models.SensorTypeMotion: mockISensor}})

	w := doJSON(rs, http.MethodGet, "/v1/camera/"+cameraID.String()+"/sensor/motion", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, CodeInternal, decode[api.Error](t, w).Code)
}

func TestCameraLimiter(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServerWithLimiter(iot.NewRateLimiterStore(2, 2))
	created := onboard(t, rs, "busy")
	cameraPath := "/v1/camera/" + created.CameraID.String()

	// 3 requests in quick succession, only 2 should be allowed
	for i := range 3 {
		w := doJSON(rs, http.MethodGet, cameraPath, nil)
		if i < 2 {
			require.Equal(t, http.StatusOK, w.Code, "request %d should be allowed", i+1)
		} else {
			require.Equal(t, http.StatusTooManyRequests, w.Code, "request %d should be rate limited", i+1)
			assert.Equal(t, CodeRateLimited, decode[api.Error](t, w).Code)
		}
	}

	// other cameras keep their own budget
	w := doJSON(rs, http.MethodGet, "/v1/camera/"+onboard(t, rs, "quiet").CameraID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(rs, http.MethodPost, cameraPath+"/limiter", api.LimiterRequest{Rate: 2, Burst: 2})
	require.Equal(t, http.StatusOK, w.Code, "limiter request should be allowed")

	w = doJSON(rs, http.MethodGet, cameraPath, nil)
	require.Equal(t, http.StatusOK, w.Code, "request after limiter reset should be allowed")
}

func TestCameraLimiter_Exhausted(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServerWithLimiter(iot.NewRateLimiterStore(0, 0))
	cameraID := uuid.NewString()

	for _, path := range []string{
		"/v1/camera/" + cameraID,
		"/v1/camera/" + cameraID + "/location",
		"/v1/camera/" + cameraID + "/sensor/light",
	} {
		w := doJSON(rs, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code, path)
	}

	w := doJSON(rs, http.MethodPatch, "/v1/"+cameraID+"/initialize", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestPostLimiter_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		rs := setupTestServerWithLimiter(iot.NewRateLimiterStore(2, 2))
		// empty payload should be rejected
		w := doJSON(rs, http.MethodPost, "/v1/camera/"+uuid.NewString()+"/limiter", "{}")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	{
		// without limiter store the request succeeds but has no effect
		rs := setupTestServer()
		cameraID := uuid.NewString()
		w := doJSON(rs, http.MethodPost, "/v1/camera/"+cameraID+"/limiter", api.LimiterRequest{Rate: 1, Burst: 1})
		require.Equal(t, http.StatusOK, w.Code)

		for range 3 {
			w = doJSON(rs, http.MethodGet, "/v1/camera/"+cameraID+"/sensor/motion", nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
	}
}

func TestCustomAPIVersion(t *testing.T) {
	common.SetTestLoggerNop()

	gin.SetMode(gin.TestMode)
	rs := &RestfulServer{Server: gin.New(), Iot: newTestIOT(), Version: "v2"}
	rs.Setup()

	w := doJSON(rs, http.MethodPost, "/v2/onboard", api.OnboardRequest{CameraName: "v2", FirmwareVersion: "1"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(rs, http.MethodPost, "/v1/onboard", api.OnboardRequest{CameraName: "v1", FirmwareVersion: "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
