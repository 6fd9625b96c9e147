package controller

import (
	"log"

	"nurtura/models"
	"nurtura/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ChannelConfigController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewChannelConfigController(db *gorm.DB, logger *log.Logger) *ChannelConfigController {
	return &ChannelConfigController{
		DB:     db,
		Logger: logger,
	}
}

// UpsertChannelConfig creates or updates the transport settings for one
// channel of the caller's organization
func (cc *ChannelConfigController) UpsertChannelConfig(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Channel      string `json:"channel" validate:"required,oneof=sms whatsapp email"`
		GatewayURL   string `json:"gateway_url" validate:"omitempty,url"`
		APIKey       string `json:"api_key" validate:"omitempty,max=500"`
		FromNumber   string `json:"from_number" validate:"omitempty,max=30"`
		SMTPHost     string `json:"smtp_host" validate:"omitempty,max=200"`
		SMTPPort     int    `json:"smtp_port" validate:"omitempty,min=1,max=65535"`
		SMTPUsername string `json:"smtp_username" validate:"omitempty,max=200"`
		SMTPPassword string `json:"smtp_password" validate:"omitempty,max=200"`
		FromEmail    string `json:"from_email" validate:"omitempty,email"`
		FromName     string `json:"from_name" validate:"omitempty,max=200"`
		IsActive     *bool  `json:"is_active"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var cfg models.ChannelConfig
	err := cc.DB.Where("organization_id = ? AND channel = ?", user.OrganizationID, input.Channel).
		First(&cfg).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		cc.Logger.Printf("Failed to load channel config: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load channel config", err)
	}

	cfg.OrganizationID = user.OrganizationID
	cfg.Channel = input.Channel
	cfg.GatewayURL = input.GatewayURL
	cfg.APIKey = input.APIKey
	cfg.FromNumber = input.FromNumber
	cfg.SMTPHost = input.SMTPHost
	if input.SMTPPort != 0 {
		cfg.SMTPPort = input.SMTPPort
	}
	cfg.SMTPUsername = input.SMTPUsername
	cfg.SMTPPassword = input.SMTPPassword
	cfg.FromEmail = input.FromEmail
	cfg.FromName = input.FromName
	if input.IsActive != nil {
		cfg.IsActive = *input.IsActive
	} else if cfg.ID == 0 {
		cfg.IsActive = true
	}

	if err := cc.DB.Save(&cfg).Error; err != nil {
		cc.Logger.Printf("Failed to save channel config: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save channel config", err)
	}

	return c.JSON(utils.SuccessResponse(cfg))
}

// ListChannelConfigs returns the organization's channel configurations
func (cc *ChannelConfigController) ListChannelConfigs(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var configs []models.ChannelConfig
	err := cc.DB.Where("organization_id = ?", user.OrganizationID).
		Order("channel ASC").
		Find(&configs).Error
	if err != nil {
		cc.Logger.Printf("Failed to list channel configs: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list channel configs", err)
	}

	return c.JSON(utils.SuccessResponse(configs))
}
