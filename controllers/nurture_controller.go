package controller

import (
	"errors"
	"log"

	"nurtura/config"
	"nurtura/models"
	"nurtura/nurture"
	"nurtura/utils"

	"github.com/gofiber/fiber/v2"
)

type NurtureController struct {
	Service *nurture.Service
	Logger  *log.Logger
}

func NewNurtureController(service *nurture.Service, logger *log.Logger) *NurtureController {
	return &NurtureController{
		Service: service,
		Logger:  logger,
	}
}

// Enroll puts a lead into a nurture sequence, superseding any previous
// active enrollment for that lead
func (nc *NurtureController) Enroll(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		LeadID     uint `json:"lead_id" validate:"required"`
		SequenceID uint `json:"sequence_id" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	enrollment, err := nc.Service.Enroll(c.Context(), input.LeadID, input.SequenceID, user.OrganizationID)
	if err != nil {
		switch {
		case errors.Is(err, nurture.ErrSequenceNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		case errors.Is(err, nurture.ErrLeadNotFound):
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		case errors.Is(err, nurture.ErrEmptySequence):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Sequence has no steps", nil)
		default:
			nc.Logger.Printf("Failed to enroll lead %d: %v", input.LeadID, err)
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enroll lead", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(enrollment))
}

// CancelEnrollments cancels every active enrollment of a lead
func (nc *NurtureController) CancelEnrollments(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var lead models.Lead
	if err := config.DB.Where("id = ? AND organization_id = ?", leadID, user.OrganizationID).First(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	if err := nc.Service.CancelActiveEnrollments(c.Context(), lead.ID); err != nil {
		nc.Logger.Printf("Failed to cancel enrollments for lead %d: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel enrollments", err)
	}

	return c.JSON(fiber.Map{
		"message": "Active enrollments cancelled",
	})
}

// ProcessDueTasks manually triggers one processing pass over due tasks.
// The periodic worker runs the same pass on a schedule.
func (nc *NurtureController) ProcessDueTasks(c *fiber.Ctx) error {
	count, err := nc.Service.ProcessDueTasks(c.Context())
	if err != nil {
		nc.Logger.Printf("Failed to process due tasks: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process due tasks", err)
	}

	return c.JSON(fiber.Map{
		"message":   "Processing pass completed",
		"processed": count,
	})
}

// EnsureDefaultSequence creates the canonical follow-up sequence for the
// caller's organization if it does not exist yet
func (nc *NurtureController) EnsureDefaultSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	name := config.AppConfig.DefaultSequenceName
	var input struct {
		Name string `json:"name" validate:"omitempty,max=200"`
	}
	if err := c.BodyParser(&input); err == nil && input.Name != "" {
		name = input.Name
	}

	sequence, err := nc.Service.EnsureDefaultSequence(c.Context(), user.OrganizationID, name)
	if err != nil {
		nc.Logger.Printf("Failed to ensure default sequence: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to ensure default sequence", err)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// GetEnrollment returns one enrollment with its tasks
func (nc *NurtureController) GetEnrollment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	enrollmentID := utils.ParseUint(c.Params("id"))

	var enrollment models.NurtureEnrollment
	err := config.DB.Preload("Tasks").
		Where("id = ? AND organization_id = ?", enrollmentID, user.OrganizationID).
		First(&enrollment).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Enrollment not found", nil)
	}

	return c.JSON(utils.SuccessResponse(enrollment))
}
