package store

import (
	"context"
	"errors"
	"fmt"

	"ward-manager/feature/occupancy/models"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a GORM connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database connection.
// The connection must be opened with error translation enabled so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ActivePatients returns every patient currently marked active.
func (s *GormStore) ActivePatients(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active patients: %w", err)
	}
	return patients, nil
}

// ArchivedPatients returns discharged stays, most recent first.
func (s *GormStore) ArchivedPatients(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusDischarged).
		Order("discharge_date DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load archived patients: %w", err)
	}
	return patients, nil
}

func (s *GormStore) PatientByID(ctx context.Context, id uint) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

// PatientByExternalID returns the most recent stay for the external id.
func (s *GormStore) PatientByExternalID(ctx context.Context, externalID string) (*models.Patient, error) {
	var patient models.Patient
	err := s.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Order("id DESC").
		First(&patient).Error
	if err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (s *GormStore) CreatePatient(ctx context.Context, patient *models.Patient) error {
	if err := s.db.WithContext(ctx).Create(patient).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	if err := s.db.WithContext(ctx).Save(patient).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormStore) RoomByExternalID(ctx context.Context, externalID string) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&room).Error
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *GormStore) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		return translate(err)
	}
	return nil
}

// RoomsWithBeds returns all rooms with their beds preloaded.
func (s *GormStore) RoomsWithBeds(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.db.WithContext(ctx).
		Preload("Beds").
		Order("number").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	return rooms, nil
}

func (s *GormStore) BedByExternalID(ctx context.Context, externalID string) (*models.Bed, error) {
	var bed models.Bed
	err := s.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&bed).Error
	if err != nil {
		return nil, translate(err)
	}
	return &bed, nil
}

func (s *GormStore) CreateBed(ctx context.Context, bed *models.Bed) error {
	if err := s.db.WithContext(ctx).Create(bed).Error; err != nil {
		return translate(err)
	}
	return nil
}

// Transaction runs fn against a transaction-bound store. fn returning an
// error rolls back every staged mutation.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translate maps GORM errors to the package sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
