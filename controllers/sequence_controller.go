package controller

import (
	"log"

	"nurtura/models"
	"nurtura/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SequenceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Logger: logger,
	}
}

type sequenceStepInput struct {
	StepOrder    int    `json:"step_order" validate:"required,min=1"`
	Channel      string `json:"channel" validate:"required,oneof=sms whatsapp email"`
	DelayInHours int    `json:"delay_in_hours" validate:"min=0"`
	Content      string `json:"content" validate:"required"`
	Subject      string `json:"subject" validate:"omitempty,max=200"`
}

// CreateSequence creates a named sequence together with its ordered steps
func (sc *SequenceController) CreateSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string              `json:"name" validate:"required,max=200"`
		Description string              `json:"description" validate:"omitempty,max=1000"`
		Steps       []sequenceStepInput `json:"steps" validate:"required,min=1,dive"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.NurtureSequence
	if err := sc.DB.Where("organization_id = ? AND name = ?", user.OrganizationID, input.Name).
		First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A sequence with this name already exists", nil)
	}

	sequence := models.NurtureSequence{
		OrganizationID: user.OrganizationID,
		Name:           input.Name,
		Description:    input.Description,
		IsActive:       true,
	}
	for _, step := range input.Steps {
		sequence.Steps = append(sequence.Steps, models.NurtureStep{
			StepOrder:    step.StepOrder,
			Channel:      step.Channel,
			Type:         step.Channel,
			DelayInHours: step.DelayInHours,
			Content:      step.Content,
			Subject:      step.Subject,
		})
	}

	if err := sc.DB.Create(&sequence).Error; err != nil {
		sc.Logger.Printf("Failed to create sequence: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sequence))
}

// GetSequence returns one sequence with its steps in order
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	sequenceID := utils.ParseUint(c.Params("id"))

	var sequence models.NurtureSequence
	err := sc.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order ASC")
	}).
		Where("id = ? AND organization_id = ?", sequenceID, user.OrganizationID).
		First(&sequence).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// ListSequences returns the organization's sequences
func (sc *SequenceController) ListSequences(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var sequences []models.NurtureSequence
	err := sc.DB.Where("organization_id = ?", user.OrganizationID).
		Order("created_at DESC").
		Find(&sequences).Error
	if err != nil {
		sc.Logger.Printf("Failed to list sequences: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list sequences", err)
	}

	return c.JSON(utils.SuccessResponse(sequences))
}
