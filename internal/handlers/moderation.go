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

// ModerationHandler handles the panel moderation queue.
type ModerationHandler struct {
	Moderation *services.ModerationService
}

// Pending handles GET /api/panel/comments/pending
// @Summary List comments awaiting approval
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/comments/pending [get]
func (h *ModerationHandler) Pending(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	comments, err := h.Moderation.Pending(c.UserContext(), userID)
	if err != nil {
		// Same empty-list fallback as the site list read.
		log.Printf("moderation: pending read failed for user %d: %v", userID, err)
		comments = nil
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return utils.OpSuccess(c, fiber.Map{"comments": comments})
}

// Approve handles PUT /api/panel/comments/:id/approve
// @Summary Approve a pending comment
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment id"
// @Success 200 {object} utils.OpResponseStruct
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/comments/{id}/approve [put]
func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	commentID, err := c.ParamsInt("id")
	if err != nil || commentID <= 0 {
		return utils.OpError(c, types.ValidationError("Invalid comment id."))
	}

	if err := h.Moderation.Approve(c.UserContext(), userID, uint64(commentID)); err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, nil)
}

// Reject handles DELETE /api/panel/comments/:id
// @Summary Reject and delete a pending comment
// @Tags Panel
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment id"
// @Success 200 {object} utils.OpResponseStruct
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /panel/comments/{id} [delete]
func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.OpError(c, types.AuthError("Invalid or expired session."))
	}

	commentID, err := c.ParamsInt("id")
	if err != nil || commentID <= 0 {
		return utils.OpError(c, types.ValidationError("Invalid comment id."))
	}

	if err := h.Moderation.Reject(c.UserContext(), userID, uint64(commentID)); err != nil {
		return utils.OpError(c, err)
	}
	return utils.OpSuccess(c, nil)
}
