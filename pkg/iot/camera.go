package iot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

func cameraLogger(category string) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, category),
	)
}

func (i *IOT) createCamera(ctx context.Context, name, firmwareVersion string) (*models.Camera, error) {
	logger := cameraLogger(common.LoggerCategoryIOTCamera)

	name, firmwareVersion = strings.TrimSpace(name), strings.TrimSpace(firmwareVersion)
	if name == "" || firmwareVersion == "" {
		return nil, fmt.Errorf("%w: camera name and firmware version are required", ErrValidation)
	}

	now := i.clock().Now()
	camera := models.Camera{
		Name:            name,
		FirmwareVersion: firmwareVersion,
		CreatedAt:       now,
		OnboardedAt:     &now,
	}

	logger.Info("Received camera onboarding", zap.String("name", name), zap.String("firmware_version", firmwareVersion))

	if err := i.cameras().Save(ctx, &camera); err != nil {
		logger.Error("Camera not created", zap.Error(err))
		i.countFailure("camera.not_created", "")
		return nil, wrap(ErrCameraNotCreated, err)
	}

	logger.Info("Onboarded camera", zap.Reflect("camera", camera))
	i.notify(ctx, events.New(events.CameraOnboarded, camera.ID, now))
	return &camera, nil
}

func (i *IOT) getCameraByID(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error) {
	if cameraID == uuid.Nil {
		return nil, fmt.Errorf("%w: camera id is required", ErrInvalidID)
	}

	camera, err := i.cameras().FindByID(ctx, cameraID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCameraNotFound, cameraID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading camera %s: %w", cameraID, err)
	}
	return camera, nil
}

func (i *IOT) listCameras(ctx context.Context) ([]models.Camera, error) {
	cameras, err := i.cameras().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cameras: %w", err)
	}
	return cameras, nil
}

func (i *IOT) initializeCamera(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error) {
	logger := common.WithCamera(cameraLogger(common.LoggerCategoryIOTCamera), cameraID)

	var camera *models.Camera
	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		c, err := i.getCameraByID(ctx, cameraID)
		if err != nil {
			return err
		}
		if c.Initialized() {
			return fmt.Errorf("%w: at %s", ErrCameraAlreadyInitialized, c.InitializedAt.Format(time.RFC3339))
		}

		now := i.clock().Now()
		marked, err := i.cameras().MarkInitialized(ctx, cameraID, now)
		if err != nil {
			return wrap(ErrCameraNotInitialized, err)
		}
		if !marked {
			return ErrCameraAlreadyInitialized
		}

		c.InitializedAt = &now
		camera = c
		return nil
	})
	if err != nil {
		logger.Warn("Camera not initialized", zap.Error(err))
		i.countFailure("camera.not_initialized", "")
		return nil, passThrough(ErrCameraNotInitialized, err,
			ErrInvalidID, ErrCameraNotFound, ErrCameraAlreadyInitialized, ErrCameraNotInitialized)
	}

	logger.Info("Initialized camera", zap.Time("initialized_at", *camera.InitializedAt))
	i.notify(ctx, events.New(events.CameraInitialized, cameraID, *camera.InitializedAt))
	return camera, nil
}

func (i *IOT) uploadImage(ctx context.Context, cameraID uuid.UUID, imageID string, data []byte) (*models.Camera, error) {
	logger := common.WithCamera(cameraLogger(common.LoggerCategoryIOTImage), cameraID)

	imageID = strings.TrimSpace(imageID)
	if imageID == "" {
		return nil, fmt.Errorf("%w: image id is required", ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image data is required", ErrValidation)
	}

	camera, err := i.getCameraByID(ctx, cameraID)
	if err != nil {
		return nil, err
	}
	if camera.HasImage() {
		return nil, fmt.Errorf("%w: %s", ErrImageAlreadyUploaded, *camera.ImageID)
	}

	if i.Blob == nil {
		return nil, wrap(ErrImageNotUploaded, fmt.Errorf("blob store not available"))
	}

	logger.Info("Uploading image", zap.String("image_id", imageID), zap.Int("bytes", len(data)))
	if err := i.Blob.Upload(ctx, i.BlobContainer, imageID, data); err != nil {
		logger.Error("Image not uploaded", zap.String("image_id", imageID), zap.Error(err))
		i.countFailure("camera.image_not_uploaded", "")
		return nil, wrap(ErrImageNotUploaded, err)
	}

	attached, err := i.cameras().AttachImage(ctx, cameraID, imageID, i.BlobContainer, imageID)
	if err != nil {
		i.countFailure("camera.image_not_uploaded", "")
		return nil, wrap(ErrImageNotUploaded, err)
	}
	if !attached {
		// zero rows also means the camera was deleted while the blob was uploading
		if _, err := i.getCameraByID(ctx, cameraID); err != nil {
			logger.Warn("Image uploaded for a camera that no longer exists",
				zap.String("container", i.BlobContainer),
				zap.String("blob", imageID),
				zap.Error(err))
			return nil, err
		}
		logger.Warn("Image uploaded but camera already holds one", zap.String("image_id", imageID))
		return nil, ErrImageAlreadyUploaded
	}

	container := i.BlobContainer
	camera.ImageID = &imageID
	camera.ContainerName = &container
	camera.BlobName = common.Ptr(imageID)

	logger.Info("Uploaded image", zap.String("image_id", imageID))
	e := events.New(events.CameraImageUploaded, cameraID, i.clock().Now())
	e.Data = imageID
	i.notify(ctx, e)
	return camera, nil
}

func (i *IOT) deleteCamera(ctx context.Context, cameraID uuid.UUID) error {
	logger := common.WithCamera(cameraLogger(common.LoggerCategoryIOTCamera), cameraID)

	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		camera, err := i.getCameraByID(ctx, cameraID)
		if err != nil {
			return err
		}
		if err := i.cameras().Delete(ctx, camera); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrCameraNotFound, cameraID)
			}
			return wrap(ErrCameraNotDeleted, err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Camera not deleted", zap.Error(err))
		return passThrough(ErrCameraNotDeleted, err, ErrInvalidID, ErrCameraNotFound, ErrCameraNotDeleted)
	}

	i.Limiters.Forget(cameraID.String())
	logger.Info("Deleted camera")
	i.notify(ctx, events.New(events.CameraDeleted, cameraID, i.clock().Now()))
	return nil
}

type ICameraImpl struct {
	iot *IOT
}

func (ic *ICameraImpl) CreateCamera(ctx context.Context, name, firmwareVersion string) (*models.Camera, error) {
	return ic.iot.createCamera(ctx, name, firmwareVersion)
}

func (ic *ICameraImpl) InitializeCamera(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error) {
	return ic.iot.initializeCamera(ctx, cameraID)
}

func (ic *ICameraImpl) GetCameraByID(ctx context.Context, cameraID uuid.UUID) (*models.Camera, error) {
	return ic.iot.getCameraByID(ctx, cameraID)
}

func (ic *ICameraImpl) ListCameras(ctx context.Context) ([]models.Camera, error) {
	return ic.iot.listCameras(ctx)
}

func (ic *ICameraImpl) UploadImage(ctx context.Context, cameraID uuid.UUID, imageID string, data []byte) (*models.Camera, error) {
	return ic.iot.uploadImage(ctx, cameraID, imageID, data)
}

func (ic *ICameraImpl) DeleteCamera(ctx context.Context, cameraID uuid.UUID) error {
	return ic.iot.deleteCamera(ctx, cameraID)
}

func (i *IOT) GetICamera() ICamera {
	return &ICameraImpl{iot: i}
}
