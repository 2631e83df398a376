// Package client is a typed REST client for the camera service.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

type Config struct {
	BaseURL string
	// Version is the API prefix, "v1" when empty.
	Version string
	Timeout time.Duration
}

type Client struct {
	HTTP    *resty.Client
	Version string
}

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Body       api.Error
}

func (e *APIError) Error() string {
	if e.Body.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d): %s", e.Body.Code, e.StatusCode, e.Body.Message)
}

// StatusCode reports the HTTP status carried by err, or 0 if err is not an *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func New(cfg Config) *Client {
	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}

	version := cfg.Version
	if version == "" {
		version = "v1"
	}
	return &Client{HTTP: r, Version: version}
}

func (c *Client) path(p string) string {
	return "/" + c.Version + p
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.HTTP.R().SetContext(ctx).SetError(&api.Error{})
}

func check(resp *resty.Response, err error, what string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if body, ok := resp.Error().(*api.Error); ok && body != nil {
			apiErr.Body = *body
		}
		return fmt.Errorf("%s: %w", what, apiErr)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.request(ctx).Get("/healthz")
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("health check: %w", &APIError{StatusCode: resp.StatusCode()})
	}
	return nil
}

func (c *Client) Onboard(ctx context.Context, name, firmwareVersion string) (*api.OnboardResponse, error) {
	var out api.OnboardResponse
	resp, err := c.request(ctx).
		SetBody(api.OnboardRequest{CameraName: name, FirmwareVersion: firmwareVersion}).
		SetResult(&out).
		Post(c.path("/onboard"))
	if err := check(resp, err, "onboarding camera"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InitializeCamera(ctx context.Context, cameraID uuid.UUID) (*api.Camera, error) {
	var out api.Camera
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetResult(&out).
		Patch(c.path("/{cameraId}/initialize"))
	if err := check(resp, err, "initializing camera"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCameras(ctx context.Context) ([]api.Camera, error) {
	var out []api.Camera
	resp, err := c.request(ctx).
		SetResult(&out).
		Get(c.path("/camera"))
	if err := check(resp, err, "listing cameras"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCamera(ctx context.Context, cameraID uuid.UUID) (*api.Camera, error) {
	var out api.Camera
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetResult(&out).
		Get(c.path("/camera/{cameraId}"))
	if err := check(resp, err, "getting camera"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCamera(ctx context.Context, cameraID uuid.UUID) error {
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		Delete(c.path("/camera/{cameraId}"))
	return check(resp, err, "deleting camera")
}

func (c *Client) UploadImage(ctx context.Context, cameraID uuid.UUID, imageID string, data []byte) (*api.Camera, error) {
	var out api.Camera
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetFormData(map[string]string{"imageId": imageID}).
		SetFileReader("data", imageID, bytes.NewReader(data)).
		SetResult(&out).
		Post(c.path("/camera/{cameraId}/upload_image"))
	if err := check(resp, err, "uploading image"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetLocation(ctx context.Context, cameraID uuid.UUID, location api.LocationRequest) (*api.Location, error) {
	var out api.Location
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetBody(location).
		SetResult(&out).
		Put(c.path("/camera/{cameraId}/location"))
	if err := check(resp, err, "setting location"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLocation(ctx context.Context, cameraID uuid.UUID) (*api.Location, error) {
	var out api.Location
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetResult(&out).
		Get(c.path("/camera/{cameraId}/location"))
	if err := check(resp, err, "getting location"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) sensorRequest(ctx context.Context, cameraID uuid.UUID, kind models.SensorType) *resty.Request {
	return c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetPathParam("kind", kind.Path())
}

func (c *Client) CreateSensor(ctx context.Context, cameraID uuid.UUID, kind models.SensorType, sensor api.SensorRequest) (*api.Sensor, error) {
	var out api.Sensor
	resp, err := c.sensorRequest(ctx, cameraID, kind).
		SetBody(sensor).
		SetResult(&out).
		Post(c.path("/camera/{cameraId}/sensor/{kind}"))
	if err := check(resp, err, "creating sensor"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSensors(ctx context.Context, cameraID uuid.UUID, kind models.SensorType) ([]api.Sensor, error) {
	var out []api.Sensor
	resp, err := c.sensorRequest(ctx, cameraID, kind).
		SetResult(&out).
		Get(c.path("/camera/{cameraId}/sensor/{kind}"))
	if err := check(resp, err, "listing sensors"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSensor(ctx context.Context, cameraID uuid.UUID, kind models.SensorType, sensorID uuid.UUID) (*api.Sensor, error) {
	var out api.Sensor
	resp, err := c.sensorRequest(ctx, cameraID, kind).
		SetPathParam("sensorId", sensorID.String()).
		SetResult(&out).
		Get(c.path("/camera/{cameraId}/sensor/{kind}/{sensorId}"))
	if err := check(resp, err, "getting sensor"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSensor(ctx context.Context, cameraID uuid.UUID, kind models.SensorType, sensorID uuid.UUID, sensor api.SensorRequest) (*api.Sensor, error) {
	var out api.Sensor
	resp, err := c.sensorRequest(ctx, cameraID, kind).
		SetPathParam("sensorId", sensorID.String()).
		SetBody(sensor).
		SetResult(&out).
		Put(c.path("/camera/{cameraId}/sensor/{kind}/{sensorId}"))
	if err := check(resp, err, "updating sensor"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSensor(ctx context.Context, cameraID uuid.UUID, kind models.SensorType, sensorID uuid.UUID) error {
	resp, err := c.sensorRequest(ctx, cameraID, kind).
		SetPathParam("sensorId", sensorID.String()).
		Delete(c.path("/camera/{cameraId}/sensor/{kind}/{sensorId}"))
	return check(resp, err, "deleting sensor")
}

func (c *Client) SetLimiter(ctx context.Context, cameraID uuid.UUID, rate float64, burst int) error {
	resp, err := c.request(ctx).
		SetPathParam("cameraId", cameraID.String()).
		SetBody(api.LimiterRequest{Rate: rate, Burst: burst}).
		Post(c.path("/camera/{cameraId}/limiter"))
	return check(resp, err, "setting limiter")
}
