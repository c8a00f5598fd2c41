package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/store"
)

// Localized label prefixes the external system puts in front of room and bed
// numbers. Stripping them yields the bare number; a hint without the prefix
// is used unchanged.
const (
	roomLabelPrefix = "Палата № "
	bedLabelPrefix  = "Койка № "
)

// Resolver performs get-or-create resolution of Room and Bed reference
// entities by external id. It never touches Patient state.
//
// Creation races are settled by the unique constraint on external_id: a
// create that loses the race returns store.ErrConflict and the resolver
// refetches the winner's row, so at most one row exists per external id.
//
// A Resolver memoizes resolutions for the lifetime of one reconciliation
// pass; create one per pass, bound to the pass transaction.
type Resolver struct {
	store store.Store
	rooms map[string]*models.Room
	beds  map[string]*models.Bed
}

// NewResolver creates a resolver bound to the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{
		store: s,
		rooms: make(map[string]*models.Room),
		beds:  make(map[string]*models.Bed),
	}
}

// Room returns the Room with the given external id, creating it if needed.
func (r *Resolver) Room(ctx context.Context, externalID, nameHint string) (*models.Room, error) {
	if room, ok := r.rooms[externalID]; ok {
		return room, nil
	}

	room, err := r.store.RoomByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		room = &models.Room{
			ExternalID: externalID,
			Number:     strings.TrimPrefix(nameHint, roomLabelPrefix),
			Name:       nameHint,
		}
		err = r.store.CreateRoom(ctx, room)
		if errors.Is(err, store.ErrConflict) {
			// Lost the creation race; the row exists now.
			room, err = r.store.RoomByExternalID(ctx, externalID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room %s: %w", externalID, err)
	}

	r.rooms[externalID] = room
	return room, nil
}

// Bed returns the Bed with the given external id, creating it inside the
// given room if needed.
func (r *Resolver) Bed(ctx context.Context, externalID, nameHint string, roomID uint) (*models.Bed, error) {
	if bed, ok := r.beds[externalID]; ok {
		return bed, nil
	}

	bed, err := r.store.BedByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		bed = &models.Bed{
			ExternalID: externalID,
			Number:     strings.TrimPrefix(nameHint, bedLabelPrefix),
			RoomID:     roomID,
		}
		err = r.store.CreateBed(ctx, bed)
		if errors.Is(err, store.ErrConflict) {
			bed, err = r.store.BedByExternalID(ctx, externalID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bed %s: %w", externalID, err)
	}

	r.beds[externalID] = bed
	return bed, nil
}
