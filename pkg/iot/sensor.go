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

func sensorLogger(kind models.SensorType) *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTSensor),
		zap.String("sensor_type", string(kind)),
	)
}

func sensorEvent(t events.Type, sensor *models.Sensor, at time.Time) events.Event {
	e := events.New(t, sensor.CameraID, at)
	e.SensorID = &sensor.ID
	e.SensorType = string(sensor.SensorType)
	e.Data = sensor.Data
	return e
}

func validateSensorDraft(draft *models.Sensor) error {
	if draft == nil || strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("%w: sensor name is required", ErrValidation)
	}
	return nil
}

func (i *IOT) createSensor(ctx context.Context, kind models.SensorType, cameraID uuid.UUID, draft *models.Sensor) (*models.Sensor, error) {
	logger := common.WithCamera(sensorLogger(kind), cameraID)

	if err := validateSensorDraft(draft); err != nil {
		return nil, err
	}

	var sensor models.Sensor
	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := i.cameraService().GetCameraByID(ctx, cameraID); err != nil {
			return err
		}

		sensor = models.Sensor{
			CameraID:   cameraID,
			Name:       draft.Name,
			Version:    draft.Version,
			Data:       draft.Data,
			SensorType: kind,
		}
		if err := i.sensorsOf(kind).Save(ctx, &sensor); err != nil {
			return wrap(ErrSensorNotCreated, err)
		}
		return nil
	})
	if err != nil {
		logger.Warn("Sensor not created", zap.Error(err))
		i.countFailure("sensor.not_created", kind)
		return nil, passThrough(ErrSensorNotCreated, err, ErrInvalidID, ErrCameraNotFound, ErrSensorNotCreated)
	}

	logger.Info("Created sensor", zap.Reflect("sensor", sensor))
	i.notify(ctx, sensorEvent(events.SensorCreated, &sensor, i.clock().Now()))
	return &sensor, nil
}

func (i *IOT) listSensorsByCamera(ctx context.Context, kind models.SensorType, cameraID uuid.UUID) ([]models.Sensor, error) {
	if _, err := i.cameraService().GetCameraByID(ctx, cameraID); err != nil {
		return nil, err
	}

	sensors, err := i.sensorsOf(kind).FindByOwner(ctx, cameraID)
	if err != nil {
		return nil, fmt.Errorf("listing %s sensors of camera %s: %w", kind.Path(), cameraID, err)
	}
	return sensors, nil
}

// ownedSensor finds sensorID among the kind's sensors of cameraID.
func (i *IOT) ownedSensor(ctx context.Context, kind models.SensorType, cameraID, sensorID uuid.UUID) (*models.Sensor, error) {
	if sensorID == uuid.Nil {
		return nil, fmt.Errorf("%w: sensor id is required", ErrInvalidID)
	}
	if _, err := i.cameraService().GetCameraByID(ctx, cameraID); err != nil {
		return nil, err
	}

	owned, err := i.sensorsOf(kind).FindByOwner(ctx, cameraID)
	if err != nil {
		return nil, fmt.Errorf("loading sensors of camera %s: %w", cameraID, err)
	}

	sensor, found := common.Find(owned, func(s models.Sensor) bool { return s.ID == sensorID })
	if !found {
		return nil, fmt.Errorf("%w: no %s sensor %s on camera %s", ErrSensorNotFound, kind.Path(), sensorID, cameraID)
	}
	return &sensor, nil
}

func (i *IOT) updateSensor(ctx context.Context, kind models.SensorType, cameraID, sensorID uuid.UUID, patch *models.Sensor) (*models.Sensor, error) {
	logger := common.WithCamera(sensorLogger(kind), cameraID)

	if err := validateSensorDraft(patch); err != nil {
		return nil, err
	}

	var sensor *models.Sensor
	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		s, err := i.ownedSensor(ctx, kind, cameraID, sensorID)
		if err != nil {
			return err
		}

		s.Name = patch.Name
		s.Version = patch.Version
		s.Data = patch.Data
		if err := i.sensorsOf(kind).Save(ctx, s); err != nil {
			return wrap(ErrSensorNotUpdated, err)
		}
		sensor = s
		return nil
	})
	if err != nil {
		logger.Warn("Sensor not updated", zap.String("sensor_id", sensorID.String()), zap.Error(err))
		i.countFailure("sensor.not_updated", kind)
		return nil, passThrough(ErrSensorNotUpdated, err,
			ErrInvalidID, ErrCameraNotFound, ErrSensorNotFound, ErrSensorNotUpdated)
	}

	logger.Info("Updated sensor", zap.Reflect("sensor", sensor))
	i.notify(ctx, sensorEvent(events.SensorUpdated, sensor, i.clock().Now()))
	return sensor, nil
}

func (i *IOT) getSensorByID(ctx context.Context, kind models.SensorType, sensorID uuid.UUID) (*models.Sensor, error) {
	if sensorID == uuid.Nil {
		return nil, fmt.Errorf("%w: sensor id is required", ErrInvalidID)
	}

	sensor, err := i.sensorsOf(kind).FindByID(ctx, sensorID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %s sensor %s", ErrSensorNotFound, kind.Path(), sensorID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading sensor %s: %w", sensorID, err)
	}
	return sensor, nil
}

func (i *IOT) deleteSensor(ctx context.Context, kind models.SensorType, cameraID, sensorID uuid.UUID) error {
	logger := common.WithCamera(sensorLogger(kind), cameraID)

	var deleted *models.Sensor
	err := i.Db.Transaction(ctx, func(ctx context.Context) error {
		s, err := i.ownedSensor(ctx, kind, cameraID, sensorID)
		if err != nil {
			return err
		}
		if err := i.sensorsOf(kind).Delete(ctx, s); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrSensorNotFound, sensorID)
			}
			return wrap(ErrSensorNotUpdated, err)
		}
		deleted = s
		return nil
	})
	if err != nil {
		logger.Warn("Sensor not deleted", zap.String("sensor_id", sensorID.String()), zap.Error(err))
		return passThrough(ErrSensorNotUpdated, err,
			ErrInvalidID, ErrCameraNotFound, ErrSensorNotFound, ErrSensorNotUpdated)
	}

	logger.Info("Deleted sensor", zap.String("sensor_id", sensorID.String()))
	i.notify(ctx, sensorEvent(events.SensorDeleted, deleted, i.clock().Now()))
	return nil
}

type ISensorImpl struct {
	iot  *IOT
	kind models.SensorType
}

func (is *ISensorImpl) Kind() models.SensorType {
	return is.kind
}

func (is *ISensorImpl) CreateSensor(ctx context.Context, cameraID uuid.UUID, draft *models.Sensor) (*models.Sensor, error) {
	return is.iot.createSensor(ctx, is.kind, cameraID, draft)
}

func (is *ISensorImpl) ListSensorsByCamera(ctx context.Context, cameraID uuid.UUID) ([]models.Sensor, error) {
	return is.iot.listSensorsByCamera(ctx, is.kind, cameraID)
}

func (is *ISensorImpl) UpdateSensor(ctx context.Context, cameraID, sensorID uuid.UUID, patch *models.Sensor) (*models.Sensor, error) {
	return is.iot.updateSensor(ctx, is.kind, cameraID, sensorID, patch)
}

func (is *ISensorImpl) GetSensorByID(ctx context.Context, sensorID uuid.UUID) (*models.Sensor, error) {
	return is.iot.getSensorByID(ctx, is.kind, sensorID)
}

func (is *ISensorImpl) DeleteSensor(ctx context.Context, cameraID, sensorID uuid.UUID) error {
	return is.iot.deleteSensor(ctx, is.kind, cameraID, sensorID)
}

func (i *IOT) GetISensor(kind models.SensorType) ISensor {
	return &ISensorImpl{iot: i, kind: kind}
}
