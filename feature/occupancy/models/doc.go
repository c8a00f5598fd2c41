// Package models defines the persisted occupancy entities: Room, Bed and
// Patient, together with the PatientStatus state set.
//
// # Ownership
//
// The relationship graph is expressed as explicit ownership:
//
//   - Room owns its Beds (cascading removal).
//   - Bed holds a lookup-only back-reference to its Room.
//   - Patient holds a weak bed_id reference; it is never a cascade trigger.
//
// # External IDs
//
// Every entity carries the external system's stable identifier, which is the
// join key for local resolution. Room and Bed external ids are unique; the
// Patient external id is only indexed, because each hospital stay is kept as
// its own historical row.
package models
