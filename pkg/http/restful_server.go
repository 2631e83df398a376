package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/iot-camera-service/pkg/api"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/iot"
)

const DefaultAPIVersion = "v1"

type RestfulServer struct {
	Server           *gin.Engine
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
	// Version prefixes every API route, e.g. "v1" serves /v1/onboard.
	Version string
	// Metrics is mounted on /metrics when set.
	Metrics http.Handler
}

func (rs *RestfulServer) CheckCameraLimiter(cameraID string) bool {
	if rs.RateLimiterStore == nil {
		return true
	}
	return rs.RateLimiterStore.Allow(cameraID)
}

func (rs *RestfulServer) SetLimiter(cameraID string, cameraRate float64, cameraBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(cameraID, rate.Limit(cameraRate), cameraBurst)
}

// limitCamera rejects the request with 429 once the camera in the path has used up its tokens.
func (rs *RestfulServer) limitCamera(c *gin.Context) {
	if !rs.CheckCameraLimiter(c.Param("cameraId")) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, api.Error{
			Status:  http.StatusTooManyRequests,
			Code:    CodeRateLimited,
			Message: "rate limit exceeded",
		})
		return
	}
	c.Next()
}

func requestLogger() gin.HandlerFunc {
	logger := common.GetLoggerWith(common.LoggerNameRestfulServer)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (rs *RestfulServer) version() string {
	if rs.Version == "" {
		return DefaultAPIVersion
	}
	return rs.Version
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(requestLogger())

	rs.Server.GET("/healthz", rs.HealthCheck)
	if rs.Metrics != nil {
		rs.Server.GET("/metrics", gin.WrapH(rs.Metrics))
	}

	v := rs.Server.Group("/" + rs.version())
	{
		v.POST("/onboard", rs.OnboardCamera)
		v.GET("/camera", rs.ListCameras)
		v.PATCH("/:cameraId/initialize", rs.limitCamera, rs.InitializeCamera)
	}

	camera := v.Group("/camera/:cameraId")
	{
		camera.POST("/limiter", rs.PostLimiter)
	}

	limited := camera.Group("", rs.limitCamera)
	{
		limited.GET("", rs.GetCamera)
		limited.DELETE("", rs.DeleteCamera)
		limited.POST("/upload_image", rs.UploadImage)
		limited.PUT("/location", rs.SetLocation)
		limited.GET("/location", rs.GetLocation)
		limited.POST("/sensor/:kind", rs.CreateSensor)
		limited.GET("/sensor/:kind", rs.ListSensors)
		limited.GET("/sensor/:kind/:sensorId", rs.GetSensor)
		limited.PUT("/sensor/:kind/:sensorId", rs.UpdateSensor)
		limited.DELETE("/sensor/:kind/:sensorId", rs.DeleteSensor)
	}
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	if rs.Iot != nil && rs.Iot.Db.Conn != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rs.Iot.Db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
