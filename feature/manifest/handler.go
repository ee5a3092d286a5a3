package manifest

import (
	"strings"

	"iiif-presentation/core/apperr"
	"iiif-presentation/core/logger"
	"iiif-presentation/core/middleware/auth"
	"iiif-presentation/feature/manifest/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for manifests.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the manifest routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/:customer/manifests")
	group.Post("/", h.HandleCreate)
	group.Put("/:id", h.HandleUpsert)
	group.Get("/:id", h.HandleGet)
}

// HandleCreate creates a manifest with a generated id.
// @Summary Create Manifest
// @Description Create a manifest from canvases and painted resources.
// @Tags manifests
// @Accept json
// @Produce json
// @Param customer path int true "Customer ID"
// @Param manifest body models.ManifestRequest true "Manifest"
// @Success 201 {object} WriteResult "Created"
// @Success 202 {object} WriteResult "Accepted, assets ingesting"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Conflict"
// @Failure 412 {object} map[string]string "Precondition Failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /{customer}/manifests [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return h.fail(c, err)
	}

	res, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, res)
}

// HandleUpsert creates or updates the manifest with the given id.
// @Summary Upsert Manifest
// @Description Create or update a manifest. Updates require If-Match with the current ETag.
// @Tags manifests
// @Accept json
// @Produce json
// @Param customer path int true "Customer ID"
// @Param id path string true "Manifest ID"
// @Param If-Match header string false "Current ETag"
// @Param manifest body models.ManifestRequest true "Manifest"
// @Success 200 {object} WriteResult "Updated"
// @Success 201 {object} WriteResult "Created"
// @Success 202 {object} WriteResult "Accepted, assets ingesting"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Conflict"
// @Failure 412 {object} map[string]string "Precondition Failed"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /{customer}/manifests/{id} [put]
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		return h.fail(c, err)
	}
	req.ManifestID = c.Params("id")

	res, err := h.service.Upsert(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, res)
}

// HandleGet returns the mirrored manifest.
// @Summary Get Manifest
// @Tags manifests
// @Produce json
// @Param customer path int true "Customer ID"
// @Param id path string true "Manifest ID"
// @Success 200 {object} mirror.Document "Manifest"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /{customer}/manifests/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	customerID, err := c.ParamsInt("customer")
	if err != nil || customerID <= 0 {
		return h.fail(c, apperr.Validation(apperr.CodeInvalidRequest, "invalid customer %q", c.Params("customer")))
	}

	res, err := h.service.Get(c.UserContext(), customerID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderETag, quoteETag(res.ETag))
	return c.JSON(res.Document)
}

func (h *Handler) parse(c *fiber.Ctx) (WriteRequest, error) {
	customerID, err := c.ParamsInt("customer")
	if err != nil || customerID <= 0 {
		return WriteRequest{}, apperr.Validation(apperr.CodeInvalidRequest, "invalid customer %q", c.Params("customer"))
	}

	var body models.ManifestRequest
	if err := c.BodyParser(&body); err != nil {
		return WriteRequest{}, apperr.Validation(apperr.CodeInvalidRequest, "invalid manifest body: %v", err)
	}

	return WriteRequest{
		CustomerID: customerID,
		ETag:       unquoteETag(c.Get(fiber.HeaderIfMatch)),
		Actor:      auth.Actor(c),
		Manifest:   body,
	}, nil
}

func (h *Handler) respond(c *fiber.Ctx, res *WriteResult) error {
	status := fiber.StatusOK
	switch res.State {
	case StateCreated:
		status = fiber.StatusCreated
	case StateAccepted:
		status = fiber.StatusAccepted
	}
	c.Set(fiber.HeaderETag, quoteETag(res.ETag))
	return c.Status(status).JSON(res)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	e := apperr.As(err)
	status := e.HTTPStatus()

	if status >= fiber.StatusInternalServerError {
		l.Error("Manifest request failed", zap.String("code", e.Code), zap.Error(err))
	} else {
		l.Warn("Manifest request rejected", zap.String("code", e.Code), zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error":    e.Error(),
		"code":     e.Code,
		"category": e.Category(),
	})
}

func quoteETag(etag string) string {
	return `"` + etag + `"`
}

// unquoteETag strips the quotes and weak prefix of an If-Match value.
func unquoteETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
