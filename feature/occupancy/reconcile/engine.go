package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/store"

	"go.uber.org/zap"
)

// Result holds the counters of one reconciliation pass.
//
// Processed counts the distinct feed records examined in the pass. New counts
// patients created in the pass; Archived and Active count status outcomes
// across both stages.
type Result struct {
	Processed int `json:"processed"`
	Archived  int `json:"archived"`
	Active    int `json:"active"`
	New       int `json:"new"`
}

// Engine reconciles a feed snapshot against the locally persisted occupancy
// view. One Sync call is one pass: load the active set, diff it against the
// snapshot, stage every mutation, commit once.
type Engine struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine creates an engine against the given store.
func NewEngine(s store.Store, logger *zap.Logger) *Engine {
	return &Engine{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// Sync runs one reconciliation pass over the snapshot.
//
// The reference date is fixed once at the start of the pass and compared
// date-only and strictly: a discharge dated exactly today does not archive.
// All mutations from both stages commit as one transaction; a failed pass
// leaves local state untouched and can be retried safely, because re-running
// with an unchanged snapshot stages zero net additional mutations.
func (e *Engine) Sync(ctx context.Context, docs []feed.Document) (*Result, error) {
	today := dateOf(e.now())

	// Index the snapshot by patient external id; the last record wins if the
	// feed ever repeats an id.
	snapshot := make(map[string]feed.Document, len(docs))
	for _, doc := range docs {
		snapshot[doc.ClientID] = doc
	}

	result := &Result{Processed: len(snapshot)}

	err := e.store.Transaction(ctx, func(tx store.Store) error {
		resolver := NewResolver(tx)

		active, err := tx.ActivePatients(ctx)
		if err != nil {
			return err
		}

		// External ids matched to an active stay. Ids only present locally
		// are not added: they have no snapshot record to cover.
		covered := make(map[string]struct{}, len(active))

		// Reconcile the currently active stays against the snapshot.
		for i := range active {
			patient := &active[i]

			doc, ok := snapshot[patient.ExternalID]
			if !ok {
				// Left the facility without an explicit discharge record.
				patient.Discharge(e.now())
				if err := tx.UpdatePatient(ctx, patient); err != nil {
					return fmt.Errorf("failed to archive patient %s: %w", patient.ExternalID, err)
				}
				result.Archived++
				continue
			}
			covered[patient.ExternalID] = struct{}{}

			if endedBefore(doc, today) {
				end := dateOf(*doc.End)
				patient.Status = models.StatusDischarged
				patient.DischargeDate = &end
				if err := tx.UpdatePatient(ctx, patient); err != nil {
					return fmt.Errorf("failed to archive patient %s: %w", patient.ExternalID, err)
				}
				result.Archived++
				continue
			}

			// Still in the facility: the latest feed values win.
			bed, err := e.resolvePlacement(ctx, resolver, doc)
			if err != nil {
				return err
			}
			patient.FullName = doc.ClientName
			patient.AdmissionDate = doc.Start
			patient.BedID = &bed.ID
			patient.DocumentID = doc.DocumentID
			patient.BranchID = doc.BranchID
			patient.DepartmentID = doc.DepartmentID
			patient.DepartmentName = doc.DepartmentName
			if err := tx.UpdatePatient(ctx, patient); err != nil {
				return fmt.Errorf("failed to update patient %s: %w", patient.ExternalID, err)
			}
			result.Active++
		}

		// Admit the snapshot records with no currently active patient. This
		// covers never-seen externals and previously discharged ones; a
		// discharged patient reappearing gets a brand-new row, never a merge.
		pending := make([]string, 0, len(snapshot))
		for id := range snapshot {
			if _, ok := covered[id]; !ok {
				pending = append(pending, id)
			}
		}
		sort.Strings(pending)

		for _, id := range pending {
			doc := snapshot[id]

			if endedBefore(doc, today) {
				// The record describes an already finished stay. If its
				// discharge is recorded locally, there is nothing to stage;
				// this keeps re-runs of an unchanged snapshot mutation-free.
				existing, err := tx.PatientByExternalID(ctx, id)
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("failed to look up patient %s: %w", id, err)
				}
				if stayRecorded(existing, dateOf(*doc.End)) {
					result.Archived++
					continue
				}
			}

			bed, err := e.resolvePlacement(ctx, resolver, doc)
			if err != nil {
				return err
			}

			patient := &models.Patient{
				ExternalID:     doc.ClientID,
				FullName:       doc.ClientName,
				AdmissionDate:  doc.Start,
				Status:         models.StatusActive,
				BedID:          &bed.ID,
				DocumentID:     doc.DocumentID,
				BranchID:       doc.BranchID,
				DepartmentID:   doc.DepartmentID,
				DepartmentName: doc.DepartmentName,
			}

			if endedBefore(doc, today) {
				// A purely historical entry.
				end := dateOf(*doc.End)
				patient.Status = models.StatusDischarged
				patient.DischargeDate = &end
				result.Archived++
			} else {
				result.Active++
			}

			if err := tx.CreatePatient(ctx, patient); err != nil {
				return fmt.Errorf("failed to create patient %s: %w", patient.ExternalID, err)
			}
			result.New++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Reconciliation pass complete",
		zap.Int("processed", result.Processed),
		zap.Int("archived", result.Archived),
		zap.Int("active", result.Active),
		zap.Int("new", result.New),
	)

	return result, nil
}

// resolvePlacement resolves the room and bed a record points at.
func (e *Engine) resolvePlacement(ctx context.Context, resolver *Resolver, doc feed.Document) (*models.Bed, error) {
	room, err := resolver.Room(ctx, doc.RoomID, doc.RoomName)
	if err != nil {
		return nil, err
	}
	return resolver.Bed(ctx, doc.BedID, doc.BedName, room.ID)
}

// stayRecorded reports whether the latest local row for an external id
// already captures a stay discharged on the given date.
func stayRecorded(p *models.Patient, dischargedOn time.Time) bool {
	return p != nil &&
		p.Status == models.StatusDischarged &&
		p.DischargeDate != nil &&
		dateOf(*p.DischargeDate).Equal(dischargedOn)
}

// endedBefore reports whether the record carries an end date strictly before
// the reference date, compared date-only.
func endedBefore(doc feed.Document, today time.Time) bool {
	return doc.End != nil && dateOf(*doc.End).Before(today)
}

// dateOf strips the time component, anchoring the wall date in UTC. Feed
// timestamps are zoneless wall times parsed as UTC while the reference date
// comes from the server clock; anchoring both in one location keeps the
// comparison a calendar-date one regardless of the server's zone.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
