// Package reconcile contains the occupancy reconciliation engine, the
// algorithmic core of the service.
//
// One pass diffs "what the external system currently reports" (the snapshot)
// against "what is currently marked active locally" in two ordered phases:
//
//  1. Reconcile the currently active stays. A patient absent from the
//     snapshot is discharged as of now. A patient whose record carries an end
//     date strictly before today (date-only) is discharged as of that date.
//     Everyone else stays active and is updated in place with the latest
//     feed values.
//
//  2. Admit the snapshot records with no active stay, creating a new patient
//     row for each: discharged when the end date already passed, active
//     otherwise. A previously discharged external id that reappears is
//     deliberately not reactivated; each stay is kept as its own historical
//     row.
//
// Both phases stage their mutations inside a single transaction, so a pass
// either commits in full or leaves the local state untouched. Re-running a
// pass against an unchanged snapshot produces no further mutations.
//
// Room and Bed references are resolved through the Resolver, which
// get-or-creates them by external id with conflict-safe creation.
package reconcile
