package integrity

import (
	"iiif-presentation/core/logger"
	"iiif-presentation/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = checks.SchemaReport{}
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/structure", h.HandleStructureCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/mirror", h.HandleMirrorCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Performs the structure, schema and mirror checks without fixing anything.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	ctx := c.Context()
	report := make(map[string]interface{})

	if structure, err := h.service.CheckStructure(ctx); err != nil {
		report["structure"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["structure"] = structure
	}

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if mirrored, err := h.service.CheckMirror(ctx); err != nil {
		report["mirror"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["mirror"] = mirrored
	}

	return c.JSON(report)
}

// HandleStructureCheck checks and optionally fixes the bucket layout.
// @Summary Check Structure
// @Description Checks that the mirror bucket and its required prefixes exist. Optionally creates them.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Create the missing bucket and prefixes"
// @Success 200 {object} map[string]interface{} "Structure Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/structure [get]
func (h *Handler) HandleStructureCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix")

	report, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Structure check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if !report.Intact() {
		l.Warn("Bucket layout incomplete",
			zap.Bool("bucket_exists", report.BucketExists),
			zap.Strings("missing", report.Missing))

		if fix {
			l.Info("Attempting to fix bucket layout")
			if err := h.service.FixStructure(c.Context(), report); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": report.Missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  report.Missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":        "checked",
		"bucket_exists": report.BucketExists,
		"missing":       report.Missing,
	})
}

// HandleSchemaCheck checks the database schema.
// @Summary Check Schema
// @Description Checks that every table and column the service persists exists in the database.
// @Tags integrity
// @Accept json
// @Produce json
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Starting schema check")

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema mismatches found", zap.Strings("errors", report.Errors))
	}

	return c.JSON(report)
}

// HandleMirrorCheck compares manifest rows with mirrored documents.
// @Summary Check Mirror
// @Description Lists manifests without a mirrored document and documents without a manifest. Optionally removes the orphaned documents.
// @Tags integrity
// @Accept json
// @Produce json
// @Param fix query boolean false "Remove orphaned documents"
// @Success 200 {object} checks.MirrorReport "Mirror Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/mirror [get]
func (h *Handler) HandleMirrorCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix")

	report, err := h.service.CheckMirror(c.Context())
	if err != nil {
		l.Error("Mirror check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Mirror check completed",
		zap.Int("manifests", report.Manifests),
		zap.Int("missing", len(report.Missing)),
		zap.Int("orphaned", len(report.Orphaned)))

	if fix && len(report.Orphaned) > 0 {
		if err := h.service.FixMirror(c.Context(), report); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to remove orphaned documents",
				"details": err.Error(),
			})
		}
		report.Orphaned = []string{}
	}

	return c.JSON(report)
}
