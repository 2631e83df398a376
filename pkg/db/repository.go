package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/iot-camera-service/pkg/models"
)

// ErrNotFound is returned by every repository lookup that matches no row.
var ErrNotFound = errors.New("record not found")

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

type CameraRepository interface {
	Save(ctx context.Context, camera *models.Camera) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Camera, error)
	FindAll(ctx context.Context) ([]models.Camera, error)
	// Delete removes the camera together with its sensors and location.
	Delete(ctx context.Context, camera *models.Camera) error
	// MarkInitialized sets initialized_at only if it is still null and reports whether it did.
	MarkInitialized(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// AttachImage records the image reference only if none is set and reports whether it did.
	AttachImage(ctx context.Context, id uuid.UUID, imageID, container, blobName string) (bool, error)
}

// SensorRepository is scoped to one sensor kind: every read filters on the discriminator.
type SensorRepository interface {
	Kind() models.SensorType
	Save(ctx context.Context, sensor *models.Sensor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Sensor, error)
	FindByOwner(ctx context.Context, cameraID uuid.UUID) ([]models.Sensor, error)
	FindAll(ctx context.Context) ([]models.Sensor, error)
	Delete(ctx context.Context, sensor *models.Sensor) error
}

type LocationRepository interface {
	Save(ctx context.Context, location *models.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	FindByOwner(ctx context.Context, cameraID uuid.UUID) (*models.Location, error)
	Delete(ctx context.Context, location *models.Location) error
}

// store holds the gorm plumbing shared by the three repositories.
type store[T any] struct {
	db     *DB
	scopes []func(*gorm.DB) *gorm.DB
}

func (s store[T]) query(ctx context.Context) *gorm.DB {
	return s.db.Session(ctx).Scopes(s.scopes...)
}

func (s store[T]) save(ctx context.Context, v *T) error {
	return s.db.Session(ctx).Omit(clause.Associations).Save(v).Error
}

func (s store[T]) first(ctx context.Context, query *gorm.DB, conds ...any) (*T, error) {
	var v T
	if err := query.First(&v, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (s store[T]) find(ctx context.Context, query *gorm.DB) ([]T, error) {
	items := []T{}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s store[T]) delete(ctx context.Context, v *T) error {
	res := s.db.Session(ctx).Delete(v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type cameraRepository struct {
	store[models.Camera]
}

func NewCameraRepository(db *DB) CameraRepository {
	return &cameraRepository{store[models.Camera]{db: db}}
}

func (r *cameraRepository) Save(ctx context.Context, camera *models.Camera) error {
	if err := r.save(ctx, camera); err != nil {
		return fmt.Errorf("saving camera %s: %w", camera.ID, err)
	}
	return nil
}

func (r *cameraRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Camera, error) {
	return r.first(ctx, r.query(ctx).Preload("Location"), "id = ?", id)
}

func (r *cameraRepository) FindAll(ctx context.Context) ([]models.Camera, error) {
	return r.find(ctx, r.query(ctx).Preload("Location").Order("created_at asc"))
}

func (r *cameraRepository) Delete(ctx context.Context, camera *models.Camera) error {
	return r.db.Transaction(ctx, func(ctx context.Context) error {
		tx := r.db.Session(ctx)
		if err := tx.Where("camera_id = ?", camera.ID).Delete(&models.Sensor{}).Error; err != nil {
			return fmt.Errorf("deleting sensors of camera %s: %w", camera.ID, err)
		}
		if err := tx.Where("camera_id = ?", camera.ID).Delete(&models.Location{}).Error; err != nil {
			return fmt.Errorf("deleting location of camera %s: %w", camera.ID, err)
		}
		res := tx.Where("id = ?", camera.ID).Delete(&models.Camera{})
		if res.Error != nil {
			return fmt.Errorf("deleting camera %s: %w", camera.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *cameraRepository) MarkInitialized(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.Session(ctx).
		Model(&models.Camera{}).
		Where("id = ? AND initialized_at IS NULL", id).
		Update("initialized_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("initializing camera %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *cameraRepository) AttachImage(ctx context.Context, id uuid.UUID, imageID, container, blobName string) (bool, error) {
	res := r.db.Session(ctx).
		Model(&models.Camera{}).
		Where("id = ? AND image_id IS NULL", id).
		Updates(map[string]any{
			"image_id":       imageID,
			"container_name": container,
			"blob_name":      blobName,
		})
	if res.Error != nil {
		return false, fmt.Errorf("attaching image to camera %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

type sensorRepository struct {
	store[models.Sensor]
	kind models.SensorType
}

func NewSensorRepository(db *DB, kind models.SensorType) SensorRepository {
	return &sensorRepository{
		store: store[models.Sensor]{
			db: db,
			scopes: []func(*gorm.DB) *gorm.DB{
				func(tx *gorm.DB) *gorm.DB { return tx.Where("sensor_type = ?", kind) },
			},
		},
		kind: kind,
	}
}

func (r *sensorRepository) Kind() models.SensorType {
	return r.kind
}

func (r *sensorRepository) Save(ctx context.Context, sensor *models.Sensor) error {
	if sensor.SensorType != r.kind {
		return fmt.Errorf("saving %s sensor through %s repository", sensor.SensorType, r.kind)
	}
	if err := r.save(ctx, sensor); err != nil {
		return fmt.Errorf("saving sensor %s: %w", sensor.ID, err)
	}
	return nil
}

func (r *sensorRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Sensor, error) {
	return r.first(ctx, r.query(ctx), "id = ?", id)
}

func (r *sensorRepository) FindByOwner(ctx context.Context, cameraID uuid.UUID) ([]models.Sensor, error) {
	return r.find(ctx, r.query(ctx).Where("camera_id = ?", cameraID).Order("name asc"))
}

func (r *sensorRepository) FindAll(ctx context.Context) ([]models.Sensor, error) {
	return r.find(ctx, r.query(ctx))
}

func (r *sensorRepository) Delete(ctx context.Context, sensor *models.Sensor) error {
	return r.delete(ctx, sensor)
}

type locationRepository struct {
	store[models.Location]
}

func NewLocationRepository(db *DB) LocationRepository {
	return &locationRepository{store[models.Location]{db: db}}
}

func (r *locationRepository) Save(ctx context.Context, location *models.Location) error {
	if err := r.save(ctx, location); err != nil {
		return fmt.Errorf("saving location of camera %s: %w", location.CameraID, err)
	}
	return nil
}

func (r *locationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	return r.first(ctx, r.query(ctx), "id = ?", id)
}

func (r *locationRepository) FindByOwner(ctx context.Context, cameraID uuid.UUID) (*models.Location, error) {
	return r.first(ctx, r.query(ctx), "camera_id = ?", cameraID)
}

func (r *locationRepository) Delete(ctx context.Context, location *models.Location) error {
	return r.delete(ctx, location)
}
