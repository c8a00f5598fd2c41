// Package occupancy implements the hospital occupancy feature.
//
// It keeps a local view of rooms, beds and patient stays in sync with an
// external hospital information system. Each sync pass fetches the full
// occupancy snapshot from the feed and reconciles it against the local
// database in a single transaction.
//
// # Components
//
//   - Service: Orchestrates sync passes, snapshot archiving and read queries.
//   - Handler: Exposes HTTP endpoints for sync, rooms and patients.
//   - Feature: Registers the feature with the application.
//
// # Subpackages
//
//   - feed: HTTP client for the external occupancy feed.
//   - models: Persistence models (Room, Bed, Patient) and read views.
//   - store: Database access behind a transactional Store interface.
//   - reconcile: The two-stage reconciliation engine.
//
// # HTTP Endpoints
//
//   - POST  /integration/sync             : Run one reconciliation pass.
//   - GET   /integration/snapshots        : List archived feed snapshots.
//   - GET   /integration/snapshots/:name  : Download one archived snapshot.
//   - GET   /rooms                        : Rooms with beds and current occupants.
//   - GET   /patients                     : Currently active patients.
//   - GET   /patients/archived            : Discharged stays.
//   - PATCH /patients/:id/status          : Administrative status transition.
package occupancy
