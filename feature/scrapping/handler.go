package scrapping

import (
	"errors"

	"krosmoz-scrapper/core/logger"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/conversion"
	"krosmoz-scrapper/feature/gameconfig"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for scrapping runs and their configuration.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the scrapping routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/scrapping")
	group.Get("/aliases", h.HandleListAliases)
	group.Get("/aliases/:alias", h.HandleGetAlias)
	group.Post("/aliases/reload", h.HandleReloadAliases)
	group.Post("/collect/:alias", h.HandleCollect)
	group.Get("/limits/:entity/:field", h.HandleGetLimits)
	group.Post("/convert/:formula", h.HandleConvert)
	group.Get("/slots", h.HandleListSlots)
	group.Get("/slots/:id", h.HandleGetSlot)

	cfg := group.Group("/config")
	cfg.Put("/formulas/:key", h.HandlePutFormula)
	cfg.Delete("/formulas/:key", h.HandleDeleteFormula)
	cfg.Put("/limits/:entity/:field", h.HandlePutLimit)
	cfg.Delete("/limits/:entity/:field", h.HandleDeleteLimit)
	cfg.Put("/slots/:id", h.HandlePutSlot)
	cfg.Delete("/slots/:id", h.HandleDeleteSlot)
	cfg.Put("/slots/:id/characteristics/:characteristic", h.HandlePutSlotCharacteristic)
	cfg.Delete("/slots/:id/characteristics/:characteristic", h.HandleDeleteSlotCharacteristic)
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// HandleListAliases returns every alias in key order.
func (h *Handler) HandleListAliases(c *fiber.Ctx) error {
	all := h.service.Resolver.All(c.Context())
	return c.JSON(fiber.Map{"count": len(all), "aliases": all})
}

// HandleReloadAliases reads the alias registry again.
func (h *Handler) HandleReloadAliases(c *fiber.Ctx) error {
	h.service.Resolver.Reload(c.Context())
	return c.JSON(fiber.Map{"aliases": h.service.Resolver.List(c.Context())})
}

// HandleGetAlias resolves one alias.
func (h *Handler) HandleGetAlias(c *fiber.Ctx) error {
	a, ok := h.service.Resolver.Resolve(c.Context(), c.Params("alias"))
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, ErrUnknownAlias)
	}
	return c.JSON(a)
}

// HandleCollect runs a collection for an alias.
// Query: page_size, max, dry_run, archive.
func (h *Handler) HandleCollect(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	opts := RunOptions{
		PageSize: c.QueryInt("page_size"),
		Max:      c.QueryInt("max"),
		DryRun:   c.QueryBool("dry_run"),
		Archive:  c.QueryBool("archive"),
	}

	report, err := h.service.Run(c.Context(), c.Params("alias"), opts)
	if err == nil {
		return c.JSON(report)
	}

	l.Warn("Collection request failed", zap.String("alias", c.Params("alias")), zap.Error(err))
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownAlias):
		return errorJSON(c, fiber.StatusNotFound, err)
	case errors.Is(err, collect.ErrUnknownSource), errors.Is(err, ErrArchiveUnavailable):
		return errorJSON(c, fiber.StatusBadRequest, err)
	case errors.Is(err, conversion.ErrUnknownFormula):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, collect.ErrRemoteIO):
		status = fiber.StatusBadGateway
	}
	if report == nil {
		return errorJSON(c, status, err)
	}
	return c.Status(status).JSON(report)
}

// HandleGetLimits returns the limits of a characteristic, or 204 when none are configured.
func (h *Handler) HandleGetLimits(c *fiber.Ctx) error {
	limits, err := h.service.Characteristics.LimitsByField(c.Context(), c.Params("field"), c.Params("entity"))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	if limits == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(limits)
}

type convertRequest struct {
	Value   float64            `json:"value"`
	Context conversion.Context `json:"context"`
}

// HandleConvert applies a formula to one value.
func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	var req convertRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	key := c.Params("formula")
	out, err := h.service.Formulas.Convert(c.Context(), req.Value, key, req.Context)
	switch {
	case errors.Is(err, conversion.ErrUnknownFormula):
		return errorJSON(c, fiber.StatusNotFound, err)
	case errors.Is(err, conversion.ErrInvalidFormula), errors.Is(err, conversion.ErrFormulaResult):
		return errorJSON(c, fiber.StatusUnprocessableEntity, err)
	case err != nil:
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"formula": key, "input": req.Value, "value": out})
}

// HandleListSlots returns the equipment slot map.
func (h *Handler) HandleListSlots(c *fiber.Ctx) error {
	slots, err := h.service.Equipment.Slots(c.Context())
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(slots)
}

// HandleGetSlot returns one equipment slot.
func (h *Handler) HandleGetSlot(c *fiber.Ctx) error {
	slot, err := h.service.Equipment.Slot(c.Context(), c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
	if slot == nil {
		return errorJSON(c, fiber.StatusNotFound, gameconfig.ErrNotFound)
	}
	return c.JSON(slot)
}

// writeResult maps a configuration write error to a response.
func (h *Handler) writeResult(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, gameconfig.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, err)
	case errors.Is(err, gameconfig.ErrInvalidLimit), errors.Is(err, gameconfig.ErrInvalidKey):
		return errorJSON(c, fiber.StatusBadRequest, err)
	default:
		logger.WithRayID(h.service.logger, c).Error("Configuration write failed", zap.Error(err))
		return errorJSON(c, fiber.StatusInternalServerError, err)
	}
}

type formulaRequest struct {
	Expression  string `json:"expression"`
	Description string `json:"description"`
}

// HandlePutFormula creates or replaces a formula after checking that it compiles.
func (h *Handler) HandlePutFormula(c *fiber.Ctx) error {
	var req formulaRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	if _, err := conversion.Compile(req.Expression); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	return h.writeResult(c, h.service.Store.SaveFormula(c.Context(), gameconfig.ConversionFormula{
		Key:         c.Params("key"),
		Expression:  req.Expression,
		Description: req.Description,
	}))
}

func (h *Handler) HandleDeleteFormula(c *fiber.Ctx) error {
	return h.writeResult(c, h.service.Store.DeleteFormula(c.Context(), c.Params("key")))
}

// HandlePutLimit creates or replaces a characteristic limit.
func (h *Handler) HandlePutLimit(c *fiber.Ctx) error {
	var req conversion.Limits
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	return h.writeResult(c, h.service.Store.SaveLimit(c.Context(), gameconfig.CharacteristicLimit{
		Field:  c.Params("field"),
		Entity: c.Params("entity"),
		Min:    req.Min,
		Max:    req.Max,
	}))
}

func (h *Handler) HandleDeleteLimit(c *fiber.Ctx) error {
	return h.writeResult(c, h.service.Store.DeleteLimit(c.Context(), c.Params("entity"), c.Params("field")))
}

type slotRequest struct {
	Name string `json:"name"`
}

// HandlePutSlot creates or renames an equipment slot.
func (h *Handler) HandlePutSlot(c *fiber.Ctx) error {
	var req slotRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	return h.writeResult(c, h.service.Store.SaveSlot(c.Context(), gameconfig.EquipmentSlot{ID: c.Params("id"), Name: req.Name}))
}

func (h *Handler) HandleDeleteSlot(c *fiber.Ctx) error {
	return h.writeResult(c, h.service.Store.DeleteSlot(c.Context(), c.Params("id")))
}

// HandlePutSlotCharacteristic creates or replaces one characteristic of a slot.
func (h *Handler) HandlePutSlotCharacteristic(c *fiber.Ctx) error {
	var req conversion.SlotCharacteristic
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}
	return h.writeResult(c, h.service.Store.SaveSlotCharacteristic(c.Context(), gameconfig.EquipmentSlotCharacteristic{
		SlotID:            c.Params("id"),
		CharacteristicKey: c.Params("characteristic"),
		BracketMax:        req.BracketMax,
		ForgemagieMax:     req.ForgemagieMax,
		BasePricePerUnit:  req.BasePricePerUnit,
		RunePricePerUnit:  req.RunePricePerUnit,
	}))
}

func (h *Handler) HandleDeleteSlotCharacteristic(c *fiber.Ctx) error {
	return h.writeResult(c, h.service.Store.DeleteSlotCharacteristic(c.Context(), c.Params("id"), c.Params("characteristic")))
}
