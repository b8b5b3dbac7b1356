package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bluebook-nepal/bluebook-backend/internal/middleware"
	"github.com/bluebook-nepal/bluebook-backend/internal/models"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// VehicleHandler manages bluebook records and their admin verification
type VehicleHandler struct {
	store storage.Store
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(store storage.Store) *VehicleHandler {
	return &VehicleHandler{store: store}
}

// Register creates a new bluebook record in pending status.
// POST /api/vehicles
func (h *VehicleHandler) Register(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	var reg models.VehicleRegistration
	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body.",
			"meta":    nil,
		})
	}

	category := models.Category(reg.Category)
	if category != models.CategoryFuel && category != models.CategoryElectric {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Category must be either fuel or electric.",
			"meta":    nil,
		})
	}
	if reg.RegistrationNo == "" || reg.Capacity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Registration number and capacity are required.",
			"meta":    nil,
		})
	}

	registrationDate, err := time.Parse("2006-01-02", reg.RegistrationDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Registration date must be in YYYY-MM-DD format.",
			"meta":    nil,
		})
	}
	taxExpireDate, err := time.Parse("2006-01-02", reg.TaxExpireDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Tax expire date must be in YYYY-MM-DD format.",
			"meta":    nil,
		})
	}

	vehicle := &models.Vehicle{
		OwnerID:          user.UserID,
		OwnerName:        reg.OwnerName,
		Category:         category,
		VehicleType:      models.ParseVehicleType(reg.VehicleType),
		RegistrationNo:   reg.RegistrationNo,
		VehicleModel:     reg.VehicleModel,
		ManufactureYear:  reg.ManufactureYear,
		ChassisNumber:    reg.ChassisNumber,
		Capacity:         reg.Capacity,
		RegistrationDate: registrationDate,
		TaxExpireDate:    taxExpireDate,
		Status:           models.StatusPending,
	}

	created, err := h.store.CreateVehicle(vehicle)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"result":  created,
		"message": "Vehicle registered. It will be available for payment after admin verification.",
		"meta":    nil,
	})
}

// ListMine returns the authenticated user's vehicles.
// GET /api/vehicles
func (h *VehicleHandler) ListMine(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	vehicles, err := h.store.GetVehiclesByOwner(user.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"result": vehicles, "meta": nil})
}

// Get returns a single vehicle. Owners see their own records; admins see
// everything. GET /api/vehicles/:id
func (h *VehicleHandler) Get(c *fiber.Ctx) error {
	user := middleware.AuthUser(c)

	vehicle, err := h.store.GetVehicle(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if vehicle.OwnerID != user.UserID && !user.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this vehicle.",
			"meta":    nil,
		})
	}
	return c.JSON(fiber.Map{"result": vehicle, "meta": nil})
}

// ListPending returns vehicles awaiting admin verification.
// GET /api/admin/vehicles/pending
func (h *VehicleHandler) ListPending(c *fiber.Ctx) error {
	vehicles, err := h.store.GetPendingVehicles()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"result": vehicles, "meta": nil})
}

type statusUpdateRequest struct {
	Status     string `json:"status"`
	AdminNotes string `json:"adminNotes"`
}

// UpdateStatus verifies or rejects a pending vehicle.
// PUT /api/admin/vehicles/:id/status
func (h *VehicleHandler) UpdateStatus(c *fiber.Ctx) error {
	admin := middleware.AuthUser(c)

	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body.",
			"meta":    nil,
		})
	}
	if req.Status != models.StatusVerified && req.Status != models.StatusRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status must be either verified or rejected.",
			"meta":    nil,
		})
	}

	if err := h.store.UpdateVehicleStatus(c.Params("id"), req.Status, req.AdminNotes, admin.UserID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Vehicle status updated.",
		"meta":    nil,
	})
}
