package controller

import (
	"log"

	"nurtura/models"
	"nurtura/nurture"
	"nurtura/utils"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LeadController struct {
	DB      *gorm.DB
	Nurture *nurture.Service
	Logger  *log.Logger
}

func NewLeadController(db *gorm.DB, nurtureService *nurture.Service, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:      db,
		Nurture: nurtureService,
		Logger:  logger,
	}
}

// CreateLead creates a new lead with validation
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Email     string `json:"email" validate:"omitempty,email"`
		FirstName string `json:"first_name" validate:"omitempty,max=100"`
		LastName  string `json:"last_name" validate:"omitempty,max=100"`
		Phone     string `json:"phone" validate:"omitempty,e164"`
		Company   string `json:"company" validate:"omitempty,max=200"`
		Source    string `json:"source" validate:"omitempty,max=100"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Email == "" && input.Phone == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Either email or phone is required", nil)
	}

	if input.Email != "" {
		if err := checkmail.ValidateFormat(input.Email); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
		}
	}

	lead := models.Lead{
		OrganizationID: user.OrganizationID,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Phone:          input.Phone,
		Company:        input.Company,
		Source:         input.Source,
		Status:         "new",
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		lc.Logger.Printf("Failed to create lead: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLead returns one lead
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var lead models.Lead
	err := lc.DB.Where("id = ? AND organization_id = ?", leadID, user.OrganizationID).
		First(&lead).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// ListLeads returns the organization's leads, newest first
func (lc *LeadController) ListLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var leads []models.Lead
	err := lc.DB.Where("organization_id = ?", user.OrganizationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&leads).Error
	if err != nil {
		lc.Logger.Printf("Failed to list leads: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list leads", err)
	}

	return c.JSON(utils.SuccessResponse(leads))
}

// UnsubscribeLead flags a lead as unsubscribed and cancels any active
// enrollment so no queued message goes out afterwards
func (lc *LeadController) UnsubscribeLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var lead models.Lead
	err := lc.DB.Where("id = ? AND organization_id = ?", leadID, user.OrganizationID).
		First(&lead).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	if err := lc.DB.Model(&lead).Update("is_unsubscribed", true).Error; err != nil {
		lc.Logger.Printf("Failed to unsubscribe lead %d: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to unsubscribe lead", err)
	}

	if err := lc.Nurture.CancelActiveEnrollments(c.Context(), lead.ID); err != nil {
		lc.Logger.Printf("Failed to cancel enrollments for unsubscribed lead %d: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel enrollments", err)
	}

	return c.JSON(fiber.Map{
		"message": "Lead unsubscribed",
	})
}

// GetLeadActivities returns the audit trail for a lead, newest first
func (lc *LeadController) GetLeadActivities(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := utils.ParseUint(c.Params("id"))

	var lead models.Lead
	err := lc.DB.Where("id = ? AND organization_id = ?", leadID, user.OrganizationID).
		First(&lead).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	var activities []models.LeadActivity
	err = lc.DB.Where("lead_id = ?", lead.ID).
		Order("activity_at DESC").
		Find(&activities).Error
	if err != nil {
		lc.Logger.Printf("Failed to list activities for lead %d: %v", lead.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list activities", err)
	}

	return c.JSON(utils.SuccessResponse(activities))
}
