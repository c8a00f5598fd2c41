package store

import (
	"context"
	"errors"

	"ward-manager/feature/occupancy/models"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict indicates a uniqueness constraint rejected a write.
	// Resolvers treat it as "someone else created the row first" and refetch.
	ErrConflict = errors.New("entity already exists")
)

// Store is the persistence contract the reconciliation engine requires.
//
// Transaction runs fn against a transaction-bound Store; every mutation
// staged inside fn commits or rolls back as one unit.
type Store interface {
	ActivePatients(ctx context.Context) ([]models.Patient, error)
	ArchivedPatients(ctx context.Context) ([]models.Patient, error)
	PatientByID(ctx context.Context, id uint) (*models.Patient, error)
	PatientByExternalID(ctx context.Context, externalID string) (*models.Patient, error)
	CreatePatient(ctx context.Context, patient *models.Patient) error
	UpdatePatient(ctx context.Context, patient *models.Patient) error

	RoomByExternalID(ctx context.Context, externalID string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	RoomsWithBeds(ctx context.Context) ([]models.Room, error)

	BedByExternalID(ctx context.Context, externalID string) (*models.Bed, error)
	CreateBed(ctx context.Context, bed *models.Bed) error

	Transaction(ctx context.Context, fn func(tx Store) error) error
}
