package occupancy

import (
	"errors"

	"ward-manager/core/logger"
	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	"ward-manager/feature/occupancy/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the occupancy feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the occupancy routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	integration := app.Group("/integration")
	integration.Post("/sync", h.HandleSync)
	integration.Get("/snapshots", h.HandleListSnapshots)
	integration.Get("/snapshots/:name", h.HandleGetSnapshot)

	app.Get("/rooms", h.HandleGetRooms)

	patients := app.Group("/patients")
	patients.Get("/", h.HandleGetActivePatients)
	patients.Get("/archived", h.HandleGetArchivedPatients)
	patients.Patch("/:id/status", h.HandleSetPatientStatus)
}

// HandleSync triggers one reconciliation pass.
// @Summary Run occupancy sync
// @Description Fetches the external occupancy snapshot and reconciles it against the local view.
// @Tags integration
// @Produce json
// @Success 200 {object} reconcile.Result "Pass counters"
// @Failure 409 {object} map[string]string "A pass is already running"
// @Failure 502 {object} map[string]string "External feed unavailable"
// @Router /integration/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	result, err := h.service.RunSync(c.Context())
	if err != nil {
		l.Error("Sync pass failed", zap.Error(err))
		switch {
		case errors.Is(err, ErrSyncRunning):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, feed.ErrUnavailable), errors.Is(err, feed.ErrFormat):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(result)
}

// HandleListSnapshots lists archived feed snapshots.
// @Summary List archived snapshots
// @Tags integration
// @Produce json
// @Success 200 {array} string "Snapshot object names"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integration/snapshots [get]
func (h *Handler) HandleListSnapshots(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.Snapshots(c.Context())
	if err != nil {
		l.Error("Snapshot listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

// HandleGetSnapshot returns one archived snapshot payload.
// @Summary Download an archived snapshot
// @Tags integration
// @Produce json
// @Param name path string true "Snapshot name as reported by the listing"
// @Success 200 {string} string "Raw snapshot payload"
// @Failure 404 {object} map[string]string "Snapshot not found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integration/snapshots/{name} [get]
func (h *Handler) HandleGetSnapshot(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	name := c.Params("name")

	raw, err := h.service.SnapshotPayload(c.Context(), name)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "snapshot not found"})
		}
		l.Error("Snapshot download failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// HandleGetRooms returns all rooms with beds and current occupants.
// @Summary Get rooms
// @Tags occupancy
// @Produce json
// @Success 200 {array} models.RoomView "Rooms"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /rooms [get]
func (h *Handler) HandleGetRooms(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	rooms, err := h.service.Rooms(c.Context())
	if err != nil {
		l.Error("Room listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rooms)
}

// HandleGetActivePatients returns the currently active patients.
// @Summary Get active patients
// @Tags occupancy
// @Produce json
// @Success 200 {array} models.Patient "Active patients"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /patients [get]
func (h *Handler) HandleGetActivePatients(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	patients, err := h.service.ActivePatients(c.Context())
	if err != nil {
		l.Error("Patient listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(patients)
}

// HandleGetArchivedPatients returns discharged stays.
// @Summary Get archived patients
// @Tags occupancy
// @Produce json
// @Success 200 {array} models.Patient "Discharged stays"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /patients/archived [get]
func (h *Handler) HandleGetArchivedPatients(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	patients, err := h.service.ArchivedPatients(c.Context())
	if err != nil {
		l.Error("Archived patient listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(patients)
}

type statusRequest struct {
	Status models.PatientStatus `json:"status"`
}

// HandleSetPatientStatus performs an administrative status transition.
// @Summary Set patient status
// @Description Administrative transition, e.g. reactivating a discharged stay. Never done by the sync engine.
// @Tags occupancy
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param body body statusRequest true "Target status"
// @Success 200 {object} models.Patient "Updated patient"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Patient not found"
// @Router /patients/{id}/status [patch]
func (h *Handler) HandleSetPatientStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid patient id"})
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	patient, err := h.service.SetPatientStatus(c.Context(), uint(id), req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "patient not found"})
		}
		l.Error("Status change failed", zap.Uint("patient_id", uint(id)), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(patient)
}
