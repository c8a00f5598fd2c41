// Package store defines the persistence contract of the occupancy feature
// and its GORM implementation.
//
// The Store interface is what the reconciliation engine programs against:
// lookups by external id, creation of reference entities, in-place patient
// updates, and a Transaction method that scopes a whole reconciliation pass
// to a single all-or-nothing commit.
//
// # Sentinel errors
//
//   - ErrNotFound: the entity does not exist; resolvers create it.
//   - ErrConflict: a unique constraint rejected a create; resolvers refetch,
//     which makes concurrent get-or-create for the same external id safe.
package store
