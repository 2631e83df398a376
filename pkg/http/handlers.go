package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

const (
	maxImageBytes   = 10 << 20
	multipartMemory = 1 << 20
)

var onboardRequestSchema = z.Struct(z.Shape{
	"cameraName":      z.String().Trim().Min(1).Required(),
	"firmwareVersion": z.String().Trim().Min(1).Required(),
})

var sensorRequestSchema = z.Struct(z.Shape{
	"name":       z.String().Trim().Min(1).Required(),
	"version":    z.String().Optional(),
	"sensorType": z.String().Trim().Min(1).Required(),
	"data":       z.String().Optional(),
})

var locationRequestSchema = z.Struct(z.Shape{
	"latitude":  z.Float64().GTE(-90).LTE(90).Required(),
	"longitude": z.Float64().GTE(-180).LTE(180).Required(),
	"address":   z.String().Trim().Min(1).Max(255).Required(),
})

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().GT(0).Required(),
	"burst": z.Int().GT(0).Required(),
})

var imageIDSchema = z.String().Trim().Min(1).Required()

// jsonBody decodes the request body as a JSON object. Keys in textFields must hold
// strings when present, zog would otherwise format any value into a string.
func jsonBody(c *gin.Context, textFields ...string) (map[string]any, map[string][]string) {
	body := map[string]any{}
	if err := json.NewDecoder(c.Request.Body).Decode(&body); err != nil {
		return nil, map[string][]string{"body": {"must be a JSON object"}}
	}

	issues := map[string][]string{}
	for _, key := range textFields {
		if v, ok := body[key]; ok && v != nil {
			if _, isText := v.(string); !isText {
				issues[key] = append(issues[key], "must be a string")
			}
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return body, nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a uuid", iot.ErrInvalidID, name, c.Param(name))
	}
	return id, nil
}

func (rs *RestfulServer) OnboardCamera(c *gin.Context) {
	body, invalid := jsonBody(c, "cameraName", "firmwareVersion")
	if invalid != nil {
		respondValidation(c, "invalid onboarding request", invalid)
		return
	}

	var req api.OnboardRequest
	if issues := onboardRequestSchema.Parse(body, &req); issues != nil {
		respondValidation(c, "invalid onboarding request", common.IssueMessages(issues))
		return
	}

	camera, err := rs.Iot.Camera.CreateCamera(c.Request.Context(), req.CameraName, req.FirmwareVersion)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.OnboardResponseFromModel(camera))
}

func (rs *RestfulServer) InitializeCamera(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	camera, err := rs.Iot.Camera.InitializeCamera(c.Request.Context(), cameraID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CameraFromModel(camera))
}

func (rs *RestfulServer) ListCameras(c *gin.Context) {
	cameras, err := rs.Iot.Camera.ListCameras(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CamerasFromModels(cameras))
}

func (rs *RestfulServer) GetCamera(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	camera, err := rs.Iot.Camera.GetCameraByID(c.Request.Context(), cameraID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CameraFromModel(camera))
}

func (rs *RestfulServer) DeleteCamera(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := rs.Iot.Camera.DeleteCamera(c.Request.Context(), cameraID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondImageTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.Error{
		Status:  http.StatusRequestEntityTooLarge,
		Code:    CodeImageTooLarge,
		Message: fmt.Sprintf("image upload exceeds %d bytes", maxImageBytes),
	})
}

func (rs *RestfulServer) UploadImage(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Request.ContentLength > maxImageBytes {
		respondImageTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondImageTooLarge(c)
			return
		}
		respondValidation(c, "invalid multipart form", map[string][]string{"body": {err.Error()}})
		return
	}

	imageID := c.PostForm("imageId")
	if issues := imageIDSchema.Validate(&imageID); issues != nil {
		respondValidation(c, "imageId is required", map[string][]string{
			"imageId": {issues[0].Message},
		})
		return
	}

	file, err := c.FormFile("data")
	if err != nil {
		respondValidation(c, "data is required", map[string][]string{"data": {err.Error()}})
		return
	}
	f, err := file.Open()
	if err != nil {
		respondValidation(c, "data could not be read", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondValidation(c, "data could not be read", nil)
		return
	}

	camera, err := rs.Iot.Camera.UploadImage(c.Request.Context(), cameraID, imageID, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CameraFromModel(camera))
}

func (rs *RestfulServer) SetLocation(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req api.LocationRequest
	if issues := locationRequestSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondValidation(c, "invalid location", common.IssueMessages(issues))
		return
	}

	location, err := rs.Iot.Location.SetLocation(c.Request.Context(), cameraID, &models.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.LocationFromModel(location))
}

func (rs *RestfulServer) GetLocation(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	location, err := rs.Iot.Location.GetLocation(c.Request.Context(), cameraID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.LocationFromModel(location))
}

// sensorService resolves the :kind segment; an unknown kind is a 404.
func (rs *RestfulServer) sensorService(c *gin.Context) (iot.ISensor, error) {
	kind, err := iot.ResolveSensorKind(c.Param("kind"))
	if err != nil {
		return nil, err
	}
	return rs.Iot.Sensor(kind)
}

// sensorDraft validates the body and checks its sensorType against the endpoint kind.
func sensorDraft(c *gin.Context, kind models.SensorType) (*models.Sensor, bool) {
	body, invalid := jsonBody(c, "name", "version", "sensorType", "data")
	if invalid != nil {
		respondValidation(c, "invalid sensor", invalid)
		return nil, false
	}

	var req api.SensorRequest
	if issues := sensorRequestSchema.Parse(body, &req); issues != nil {
		respondValidation(c, "invalid sensor", common.IssueMessages(issues))
		return nil, false
	}

	draft, err := iot.ResolveSensor(kind, iot.SensorDraft{
		Name:       req.Name,
		Version:    req.Version,
		SensorType: req.SensorType,
		Data:       req.Data,
	})
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return draft, true
}

func (rs *RestfulServer) CreateSensor(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}
	service, err := rs.sensorService(c)
	if err != nil {
		respondError(c, err)
		return
	}

	draft, ok := sensorDraft(c, service.Kind())
	if !ok {
		return
	}

	sensor, err := service.CreateSensor(c.Request.Context(), cameraID, draft)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.SensorFromModel(sensor))
}

func (rs *RestfulServer) ListSensors(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}
	service, err := rs.sensorService(c)
	if err != nil {
		respondError(c, err)
		return
	}

	sensors, err := service.ListSensorsByCamera(c.Request.Context(), cameraID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SensorsFromModels(sensors))
}

func (rs *RestfulServer) GetSensor(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}
	sensorID, err := pathUUID(c, "sensorId")
	if err != nil {
		respondError(c, err)
		return
	}
	service, err := rs.sensorService(c)
	if err != nil {
		respondError(c, err)
		return
	}

	sensor, err := service.GetSensorByID(c.Request.Context(), sensorID)
	if err != nil {
		respondError(c, err)
		return
	}
	if sensor.CameraID != cameraID {
		respondError(c, fmt.Errorf("%w: %s is not attached to camera %s", iot.ErrSensorNotFound, sensorID, cameraID))
		return
	}

	c.JSON(http.StatusOK, api.SensorFromModel(sensor))
}

func (rs *RestfulServer) UpdateSensor(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}
	sensorID, err := pathUUID(c, "sensorId")
	if err != nil {
		respondError(c, err)
		return
	}
	service, err := rs.sensorService(c)
	if err != nil {
		respondError(c, err)
		return
	}

	patch, ok := sensorDraft(c, service.Kind())
	if !ok {
		return
	}

	sensor, err := service.UpdateSensor(c.Request.Context(), cameraID, sensorID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.SensorFromModel(sensor))
}

func (rs *RestfulServer) DeleteSensor(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}
	sensorID, err := pathUUID(c, "sensorId")
	if err != nil {
		respondError(c, err)
		return
	}
	service, err := rs.sensorService(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := service.DeleteSensor(c.Request.Context(), cameraID, sensorID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	cameraID, err := pathUUID(c, "cameraId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req api.LimiterRequest
	if issues := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); issues != nil {
		respondValidation(c, "invalid limiter", common.IssueMessages(issues))
		return
	}

	rs.SetLimiter(cameraID.String(), req.Rate, req.Burst)

	c.Status(http.StatusOK)
}
