package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/middleware"
	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/services"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// SiteHandler handles panel site CRUD.
type SiteHandler struct {
	Sites *services.SiteService
}

type createSiteRequest struct {
	SiteURL  string `json:"site_url"`
	SiteName string `json:"site_name"`
}

// List handles GET /api/panel/sites
// @Summary List the caller's sites
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/sites [get]
func (h *SiteHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	sites, err := h.Sites.List(c.UserContext(), userID)
	if err != nil {
		// Reads fall back to an empty list; the panel renders the empty
		// state rather than an error.
		log.Printf("sites: list failed for user %d: %v", userID, err)
		sites = nil
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return utils.OpSuccess(c, fiber.Map{"sites": sites})
}

// Create handles POST /api/panel/sites
// @Summary Register a site
// @Description Enforces the plan limit (1 free, 3 paid) and generates the widget api_key
// @Tags Panel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createSiteRequest true "Site"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/sites [post]
func (h *SiteHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	var in createSiteRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.OpError(c, types.ValidationError("Invalid request body."))
	}

	site, err := h.Sites.Create(c.UserContext(), userID, in.SiteURL, in.SiteName)
	if err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, fiber.Map{"site": site})
}

// Delete handles DELETE /api/panel/sites/:id
// @Summary Delete a site
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Param id path int true "Site id"
// @Success 200 {object} utils.OpResponseStruct
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/sites/{id} [delete]
func (h *SiteHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	siteID, err := c.ParamsInt("id")
	if err != nil || siteID <= 0 {
		return utils.OpError(c, types.ValidationError("Invalid site id."))
	}

	if err := h.Sites.Delete(c.UserContext(), userID, uint64(siteID)); err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, nil)
}
