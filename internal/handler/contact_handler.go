package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chef-site-api/internal/dto"
	"github.com/noah-isme/chef-site-api/internal/service"
	"github.com/noah-isme/chef-site-api/internal/utils"
)

const schemaContentType = "application/schema+json"

// ContactHandler handles contact submissions.
type ContactHandler struct {
	service service.ContactService
	schema  []byte
	logger  zerolog.Logger
}

// NewContactHandler constructs a contact handler. schema is served verbatim
// so browser clients can validate against the same rules.
func NewContactHandler(service service.ContactService, schema []byte, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		schema:  schema,
		logger:  logger.With().Str("component", "contact_handler").Logger(),
	}
}

// Register wires contact routes.
func (h *ContactHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Post("/validate", h.validate)
	router.Get("/schema", h.describe)
}

func (h *ContactHandler) submit(c *fiber.Ctx) error {
	var payload dto.ContactRequest
	if err := c.BodyParser(&payload); err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("unreadable contact payload")
		return utils.SendPayload(c, fiber.StatusBadRequest, dto.ContactRejected())
	}

	result := h.service.Submit(c.UserContext(), payload)
	if result.Outcome == dto.ContactOutcomeFailed {
		requestLogger(h.logger, c).Error().Msg("contact submission could not be delivered")
	}

	return utils.SendPayload(c, statusForOutcome(result.Outcome), result)
}

func (h *ContactHandler) validate(c *fiber.Ctx) error {
	var payload dto.ContactRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendPayload(c, fiber.StatusBadRequest, dto.ContactValidationResponse{Error: dto.MessageInvalidSubmission})
	}

	return utils.SendPayload(c, fiber.StatusOK, h.service.Validate(payload))
}

func (h *ContactHandler) describe(c *fiber.Ctx) error {
	if len(h.schema) == 0 {
		return utils.SendError(c, fiber.StatusNotFound, "schema unavailable")
	}
	c.Set(fiber.HeaderContentType, schemaContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Status(fiber.StatusOK).Send(h.schema)
}

func statusForOutcome(outcome dto.ContactOutcome) int {
	switch outcome {
	case dto.ContactOutcomeSent:
		return fiber.StatusOK
	case dto.ContactOutcomeInvalid:
		return fiber.StatusUnprocessableEntity
	case dto.ContactOutcomeRejected:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}
