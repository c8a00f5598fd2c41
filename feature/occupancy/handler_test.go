package occupancy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ward-manager/core/storage/mocks"
	"ward-manager/feature/occupancy"
	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, dbName string, f occupancy.FeedFetcher) (*fiber.App, store.Store) {
	t.Helper()

	s := setupTestStore(t, dbName)
	feature := occupancy.NewFeature(s, f, nil, "", zap.NewNop())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, s
}

func TestHandleSync(t *testing.T) {
	stub := &stubFeed{
		docs: []feed.Document{{
			ClientID:   "P1",
			ClientName: "Иванов Иван",
			RoomID:     "R1",
			RoomName:   "Палата № 101",
			BedID:      "B1",
			BedName:    "Койка № 1",
			Start:      time.Now().Add(-24 * time.Hour),
		}},
		raw: []byte(`{}`),
	}
	app, _ := setupTestApp(t, "handler_sync", stub)

	resp, err := app.Test(httptest.NewRequest("POST", "/integration/sync", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Processed int `json:"processed"`
		Archived  int `json:"archived"`
		Active    int `json:"active"`
		New       int `json:"new"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.New)
	assert.Equal(t, 1, result.Active)
}

func TestHandleSyncFeedUnavailable(t *testing.T) {
	stub := &stubFeed{err: fmt.Errorf("fetch: %w", feed.ErrUnavailable)}
	app, _ := setupTestApp(t, "handler_sync_down", stub)

	resp, err := app.Test(httptest.NewRequest("POST", "/integration/sync", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func TestHandleSyncConflict(t *testing.T) {
	stub := &stubFeed{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	app, _ := setupTestApp(t, "handler_sync_conflict", stub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, _ := app.Test(httptest.NewRequest("POST", "/integration/sync", nil), -1)
		if resp != nil {
			resp.Body.Close()
		}
	}()

	<-stub.started
	resp, err := app.Test(httptest.NewRequest("POST", "/integration/sync", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	close(stub.release)
	<-done
}

func TestHandleListSnapshotsEmpty(t *testing.T) {
	app, _ := setupTestApp(t, "handler_snapshots", &stubFeed{})

	resp, err := app.Test(httptest.NewRequest("GET", "/integration/snapshots", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Empty(t, names)
}

func TestHandleGetSnapshot(t *testing.T) {
	s := setupTestStore(t, "handler_snapshot_get")
	raw := `{"payload":"original"}`

	archive := new(mocks.Client)
	archive.On("GetObject", mock.Anything, "ward-snapshots", "snapshots/20260101T060000Z.json", mock.Anything).
		Return(io.NopCloser(strings.NewReader(raw)), nil)

	feature := occupancy.NewFeature(s, &stubFeed{}, archive, "ward-snapshots", zap.NewNop())
	app := fiber.New()
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("GET", "/integration/snapshots/20260101T060000Z.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(body))
}

func TestHandleGetSnapshotNotFound(t *testing.T) {
	app, _ := setupTestApp(t, "handler_snapshot_missing", &stubFeed{})

	resp, err := app.Test(httptest.NewRequest("GET", "/integration/snapshots/missing.json", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleGetRooms(t *testing.T) {
	app, s := setupTestApp(t, "handler_rooms", &stubFeed{})
	ctx := context.Background()

	room := &models.Room{ExternalID: "R1", Number: "101", Name: "Палата № 101"}
	require.NoError(t, s.CreateRoom(ctx, room))
	bed := &models.Bed{ExternalID: "B1", Number: "1", RoomID: room.ID}
	require.NoError(t, s.CreateBed(ctx, bed))
	require.NoError(t, s.CreatePatient(ctx, &models.Patient{
		ExternalID:    "P1",
		FullName:      "Иванов Иван",
		AdmissionDate: time.Now().Add(-24 * time.Hour),
		Status:        models.StatusActive,
		BedID:         &bed.ID,
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/rooms", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var views []models.RoomView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, "101", views[0].Number)
	require.Len(t, views[0].Beds, 1)
	require.NotNil(t, views[0].Beds[0].Patient)
	assert.Equal(t, "Иванов Иван", views[0].Beds[0].Patient.FullName)
}

func TestHandleGetPatients(t *testing.T) {
	app, s := setupTestApp(t, "handler_patients", &stubFeed{})
	ctx := context.Background()

	discharged := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreatePatient(ctx, &models.Patient{
		ExternalID:    "P1",
		FullName:      "Иванов Иван",
		AdmissionDate: time.Now().Add(-24 * time.Hour),
		Status:        models.StatusActive,
	}))
	require.NoError(t, s.CreatePatient(ctx, &models.Patient{
		ExternalID:    "P2",
		FullName:      "Петров Пётр",
		AdmissionDate: time.Now().Add(-96 * time.Hour),
		Status:        models.StatusDischarged,
		DischargeDate: &discharged,
	}))

	resp, err := app.Test(httptest.NewRequest("GET", "/patients/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var active []models.Patient
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&active))
	require.Len(t, active, 1)
	assert.Equal(t, "P1", active[0].ExternalID)

	resp, err = app.Test(httptest.NewRequest("GET", "/patients/archived", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var archived []models.Patient
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&archived))
	require.Len(t, archived, 1)
	assert.Equal(t, "P2", archived[0].ExternalID)
}

func TestHandleSetPatientStatus(t *testing.T) {
	app, s := setupTestApp(t, "handler_status", &stubFeed{})
	ctx := context.Background()

	discharged := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	patient := &models.Patient{
		ExternalID:    "P1",
		FullName:      "Иванов Иван",
		AdmissionDate: time.Now().Add(-96 * time.Hour),
		Status:        models.StatusDischarged,
		DischargeDate: &discharged,
	}
	require.NoError(t, s.CreatePatient(ctx, patient))

	body := bytes.NewBufferString(`{"status":"active"}`)
	req := httptest.NewRequest("PATCH", fmt.Sprintf("/patients/%d/status", patient.ID), body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Patient
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Nil(t, updated.DischargeDate)
}

func TestHandleSetPatientStatusErrors(t *testing.T) {
	app, _ := setupTestApp(t, "handler_status_errors", &stubFeed{})

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"invalid id", "/patients/abc/status", `{"status":"active"}`, fiber.StatusBadRequest},
		{"unknown patient", "/patients/999/status", `{"status":"active"}`, fiber.StatusNotFound},
		{"unknown status", "/patients/999/status", `{"status":"paused"}`, fiber.StatusBadRequest},
		{"bad body", "/patients/999/status", `not-json`, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
