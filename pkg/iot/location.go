package iot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-camera-service/pkg/common"
	"liyu1981.xyz/iot-camera-service/pkg/db"
	"liyu1981.xyz/iot-camera-service/pkg/events"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

func validateLocation(draft *models.Location) error {
	switch {
	case draft == nil:
		return fmt.Errorf("%w: location is required", ErrValidation)
	case draft.Latitude < -90 || draft.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrValidation, draft.Latitude)
	case draft.Longitude < -180 || draft.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrValidation, draft.Longitude)
	case strings.TrimSpace(draft.Address) == "" || len(draft.Address) > 255:
		return fmt.Errorf("%w: address must be 1 to 255 characters", ErrValidation)
	}
	return nil
}

func (i *IOT) setLocation(ctx context.Context, cameraID uuid.UUID, draft *models.Location) (*models.Location, error) {
	logger := common.WithCamera(common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTLocation),
	), cameraID)

	if err := validateLocation(draft); err != nil {
		return nil, err
	}

	var location *models.Location
	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := i.cameraService().GetCameraByID(ctx, cameraID); err != nil {
			return err
		}

		existing, err := i.locations().FindByOwner(ctx, cameraID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			existing = &models.Location{CameraID: cameraID}
		case err != nil:
			return wrap(ErrLocationNotSaved, err)
		}

		existing.Latitude = draft.Latitude
		existing.Longitude = draft.Longitude
		existing.Address = draft.Address
		if err := i.locations().Save(ctx, existing); err != nil {
			return wrap(ErrLocationNotSaved, err)
		}
		location = existing
		return nil
	})
	if err != nil {
		logger.Warn("Location not saved", zap.Error(err))
		i.countFailure("location.not_saved", "")
		return nil, passThrough(ErrLocationNotSaved, err, ErrInvalidID, ErrCameraNotFound, ErrLocationNotSaved)
	}

	logger.Info("Saved location", zap.Reflect("location", location))
	e := events.New(events.LocationSaved, cameraID, i.clock().Now())
	e.Data = location.Address
	i.notify(ctx, e)
	return location, nil
}

func (i *IOT) getLocation(ctx context.Context, cameraID uuid.UUID) (*models.Location, error) {
	if _, err := i.cameraService().GetCameraByID(ctx, cameraID); err != nil {
		return nil, err
	}

	location, err := i.locations().FindByOwner(ctx, cameraID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: camera %s has no location", ErrLocationNotFound, cameraID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading location of camera %s: %w", cameraID, err)
	}
	return location, nil
}

type ILocationImpl struct {
	iot *IOT
}

func (il *ILocationImpl) SetLocation(ctx context.Context, cameraID uuid.UUID, draft *models.Location) (*models.Location, error) {
	return il.iot.setLocation(ctx, cameraID, draft)
}

func (il *ILocationImpl) GetLocation(ctx context.Context, cameraID uuid.UUID) (*models.Location, error) {
	return il.iot.getLocation(ctx, cameraID)
}

func (i *IOT) GetILocation() ILocation {
	return &ILocationImpl{iot: i}
}
