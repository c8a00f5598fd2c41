package occupancy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ward-manager/core/storage"
	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/reconcile"
	"ward-manager/feature/occupancy/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrSyncRunning is returned when a reconciliation pass is requested while
// another one is still in flight. Passes must be serialized: two overlapping
// passes would both read the same active set and risk lost updates.
var ErrSyncRunning = errors.New("a sync pass is already running")

// ErrSnapshotNotFound is returned when a requested archived snapshot does
// not exist, or the archive is disabled.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// snapshotPrefix is where raw feed payloads are archived.
const snapshotPrefix = "snapshots/"

// FeedFetcher is the slice of the feed client the service needs.
type FeedFetcher interface {
	FetchDocuments(ctx context.Context) ([]feed.Document, []byte, error)
}

// Service orchestrates reconciliation passes and serves the occupancy views.
type Service struct {
	store   store.Store
	feed    FeedFetcher
	archive storage.Client
	bucket  string
	logger  *zap.Logger

	// syncMu serializes reconciliation passes within this process.
	syncMu sync.Mutex
}

// NewService creates an occupancy service. archive may be nil, in which case
// fetched snapshots are not retained.
func NewService(s store.Store, f FeedFetcher, archive storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		store:   s,
		feed:    f,
		archive: archive,
		bucket:  bucket,
		logger:  logger,
	}
}

// RunSync executes one reconciliation pass: fetch the snapshot, archive the
// raw payload, diff and apply. A fetch failure aborts the pass before any
// mutation is staged; a persistence failure rolls the whole pass back.
func (s *Service) RunSync(ctx context.Context) (*reconcile.Result, error) {
	if !s.syncMu.TryLock() {
		return nil, ErrSyncRunning
	}
	defer s.syncMu.Unlock()

	started := time.Now()

	docs, raw, err := s.feed.FetchDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	s.archiveSnapshot(ctx, raw)

	engine := reconcile.NewEngine(s.store, s.logger)
	result, err := engine.Sync(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	s.logger.Info("Sync pass finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("processed", result.Processed),
		zap.Int("new", result.New),
	)

	return result, nil
}

// archiveSnapshot stores the raw feed payload. Archive failures are logged
// and never fail the pass; the archive is an audit aid, not a dependency.
func (s *Service) archiveSnapshot(ctx context.Context, raw []byte) {
	if s.archive == nil || len(raw) == 0 {
		return
	}

	name := snapshotPrefix + time.Now().UTC().Format("20060102T150405Z") + ".json"
	_, err := s.archive.PutObject(ctx, s.bucket, name, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		s.logger.Warn("Failed to archive snapshot", zap.String("object", name), zap.Error(err))
		return
	}
	s.logger.Debug("Snapshot archived", zap.String("object", name))
}

// Snapshots lists the archived snapshot object names, oldest first.
func (s *Service) Snapshots(ctx context.Context) ([]string, error) {
	if s.archive == nil {
		return nil, nil
	}

	var names []string
	for obj := range s.archive.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: snapshotPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		names = append(names, strings.TrimPrefix(obj.Key, snapshotPrefix))
	}
	return names, nil
}

// SnapshotPayload returns the raw payload of one archived snapshot by the
// name Snapshots reported it under.
func (s *Service) SnapshotPayload(ctx context.Context, name string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrSnapshotNotFound
	}

	obj, err := s.archive.GetObject(ctx, s.bucket, snapshotPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to open snapshot %s: %w", name, err)
	}
	defer obj.Close()

	// The minio client opens objects lazily; a missing key only surfaces
	// once the stream is read.
	raw, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	return raw, nil
}

// Rooms returns all rooms with their beds and current occupants.
func (s *Service) Rooms(ctx context.Context) ([]models.RoomView, error) {
	rooms, err := s.store.RoomsWithBeds(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.store.ActivePatients(ctx)
	if err != nil {
		return nil, err
	}

	occupants := make(map[uint]*models.Patient, len(active))
	for i := range active {
		if active[i].BedID != nil {
			occupants[*active[i].BedID] = &active[i]
		}
	}

	views := make([]models.RoomView, 0, len(rooms))
	for _, room := range rooms {
		view := models.RoomView{
			ID:     room.ID,
			Number: room.Number,
			Name:   room.Name,
			Beds:   make([]models.BedView, 0, len(room.Beds)),
		}
		for _, bed := range room.Beds {
			view.Beds = append(view.Beds, models.BedView{
				ID:      bed.ID,
				Number:  bed.Number,
				Patient: occupants[bed.ID],
			})
		}
		views = append(views, view)
	}
	return views, nil
}

// ActivePatients returns the patients currently marked active.
func (s *Service) ActivePatients(ctx context.Context) ([]models.Patient, error) {
	return s.store.ActivePatients(ctx)
}

// ArchivedPatients returns the discharged stays.
func (s *Service) ArchivedPatients(ctx context.Context) ([]models.Patient, error) {
	return s.store.ArchivedPatients(ctx)
}

// SetPatientStatus performs an administrative status transition, e.g.
// reactivating a discharged stay. The reconciliation engine never reactivates
// on its own; that decision stays with the operator.
func (s *Service) SetPatientStatus(ctx context.Context, id uint, status models.PatientStatus) (*models.Patient, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	patient, err := s.store.PatientByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.StatusActive:
		patient.Status = models.StatusActive
		patient.DischargeDate = nil
	case models.StatusDischarged:
		patient.Discharge(time.Now())
	}

	if err := s.store.UpdatePatient(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}
