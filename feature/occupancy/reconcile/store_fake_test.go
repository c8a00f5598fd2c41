package reconcile

import (
	"context"
	"fmt"

	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/store"
)

// fakeStore is an in-memory store.Store with copy-on-transaction semantics,
// so rollback behavior can be exercised without a database.
type fakeStore struct {
	rooms    []*models.Room
	beds     []*models.Bed
	patients []*models.Patient
	nextID   uint

	// Call counters for resolver behavior assertions.
	roomLookups int
	roomCreates int
	bedLookups  int
	bedCreates  int
	updates     int
	creates     int

	// failPatientCreate makes CreatePatient fail once for this external id.
	failPatientCreate string
	// conflictRoomCreate makes the next CreateRoom return ErrConflict after
	// inserting the row, simulating a lost creation race.
	conflictRoomCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) id() uint {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) ActivePatients(ctx context.Context) ([]models.Patient, error) {
	var out []models.Patient
	for _, p := range f.patients {
		if p.Status == models.StatusActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) ArchivedPatients(ctx context.Context) ([]models.Patient, error) {
	var out []models.Patient
	for _, p := range f.patients {
		if p.Status == models.StatusDischarged {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) PatientByID(ctx context.Context, id uint) (*models.Patient, error) {
	for _, p := range f.patients {
		if p.ID == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) PatientByExternalID(ctx context.Context, externalID string) (*models.Patient, error) {
	for i := len(f.patients) - 1; i >= 0; i-- {
		if f.patients[i].ExternalID == externalID {
			clone := *f.patients[i]
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreatePatient(ctx context.Context, patient *models.Patient) error {
	if f.failPatientCreate != "" && patient.ExternalID == f.failPatientCreate {
		return fmt.Errorf("connection lost")
	}
	f.creates++
	clone := *patient
	clone.ID = f.id()
	patient.ID = clone.ID
	f.patients = append(f.patients, &clone)
	return nil
}

func (f *fakeStore) UpdatePatient(ctx context.Context, patient *models.Patient) error {
	f.updates++
	for i, p := range f.patients {
		if p.ID == patient.ID {
			clone := *patient
			f.patients[i] = &clone
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) RoomByExternalID(ctx context.Context, externalID string) (*models.Room, error) {
	f.roomLookups++
	for _, r := range f.rooms {
		if r.ExternalID == externalID {
			clone := *r
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateRoom(ctx context.Context, room *models.Room) error {
	f.roomCreates++
	clone := *room
	clone.ID = f.id()
	f.rooms = append(f.rooms, &clone)
	if f.conflictRoomCreate {
		f.conflictRoomCreate = false
		return store.ErrConflict
	}
	room.ID = clone.ID
	return nil
}

func (f *fakeStore) RoomsWithBeds(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	for _, r := range f.rooms {
		room := *r
		for _, b := range f.beds {
			if b.RoomID == room.ID {
				room.Beds = append(room.Beds, *b)
			}
		}
		out = append(out, room)
	}
	return out, nil
}

func (f *fakeStore) BedByExternalID(ctx context.Context, externalID string) (*models.Bed, error) {
	f.bedLookups++
	for _, b := range f.beds {
		if b.ExternalID == externalID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateBed(ctx context.Context, bed *models.Bed) error {
	f.bedCreates++
	clone := *bed
	clone.ID = f.id()
	bed.ID = clone.ID
	f.beds = append(f.beds, &clone)
	return nil
}

// Transaction snapshots the state and restores it when fn fails.
func (f *fakeStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	rooms := cloneSlice(f.rooms)
	beds := cloneSlice(f.beds)
	patients := cloneSlice(f.patients)
	nextID := f.nextID

	if err := fn(f); err != nil {
		f.rooms = rooms
		f.beds = beds
		f.patients = patients
		f.nextID = nextID
		return err
	}
	return nil
}

func cloneSlice[T any](in []*T) []*T {
	out := make([]*T, len(in))
	for i, v := range in {
		clone := *v
		out[i] = &clone
	}
	return out
}

// seedActive inserts an active patient row directly.
func (f *fakeStore) seedActive(externalID, name string) *models.Patient {
	p := &models.Patient{
		ID:         f.id(),
		ExternalID: externalID,
		FullName:   name,
		Status:     models.StatusActive,
	}
	f.patients = append(f.patients, p)
	return p
}
