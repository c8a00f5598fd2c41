// Package feed implements the client for the external occupancy snapshot.
//
// The external system of record exposes a dictionary-data endpoint that
// returns the full set of current hospital stays in one response. A single
// call with Method "GetHospitalDocuments" yields an envelope whose entries
// carry room, bed, patient, and admission/discharge information, with
// timestamps in the fixed "dd.mm.yyyy HH:MM:SS" format.
//
// # Error taxonomy
//
//   - ErrUnavailable: transport failure or non-success status; the whole
//     fetch failed and may be retried with backoff.
//   - ErrFormat: the response envelope could not be decoded.
//
// Individual malformed records do not fail the fetch: they are logged and
// skipped so one bad entry cannot block the rest of the snapshot.
package feed
