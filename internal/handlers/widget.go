package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/utils"
	"github.com/recorre/indie-comments-cloud/internal/widget"
)

// WidgetHandler handles the public endpoints the embeddable script calls.
type WidgetHandler struct {
	Widget *widget.Service
}

// publicComment is the subset of a comment the widget may see. Author
// emails and submitter addresses stay on the server.
type publicComment struct {
	ID         types.FlexUint64 `json:"id"`
	AuthorName string           `json:"author_name"`
	Message    string           `json:"message"`
	CreatedAt  string           `json:"created_at"`
}

func publicComments(comments []models.Comment) []publicComment {
	out := make([]publicComment, len(comments))
	for i, comment := range comments {
		out[i] = publicComment{
			ID:         comment.ID,
			AuthorName: comment.AuthorName,
			Message:    comment.Message,
			CreatedAt:  comment.CreatedAt,
		}
	}
	return out
}

// Bootstrap handles GET /api/widget/comments
// @Summary Resolve a widget page load
// @Description Resolves the site for the api_key, the thread for the page (creating it if absent), and the visible comments
// @Tags Widget
// @Produce json
// @Param api_key query string true "Site api_key from the script tag"
// @Param page query string false "Page path" default(/)
// @Param title query string false "Page title"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 404 {object} utils.OpResponseStruct
// @Router /widget/comments [get]
func (h *WidgetHandler) Bootstrap(c *fiber.Ctx) error {
	apiKey := c.Query("api_key")
	if apiKey == "" {
		return utils.OpError(c, types.ValidationError("Missing api_key."))
	}

	page := c.Query("page", "/")
	title := c.Query("title")

	result, err := h.Widget.Bootstrap(c.UserContext(), apiKey, page, title)
	if err != nil {
		return utils.OpError(c, err)
	}

	return utils.OpSuccess(c, fiber.Map{
		"site_name": result.Site.SiteName,
		"supporter": result.Supporter,
		"thread_id": result.Thread.ID,
		"comments":  publicComments(result.Comments),
	})
}

type submitRequest struct {
	ThreadID    uint64 `json:"thread_id"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Message     string `json:"message"`
	IPAddress   string `json:"ip_address"`
}

// Submit handles POST /api/widget/comments
// @Summary Submit a comment for moderation
// @Description Creates a not-yet-visible comment; throttled to one submission per source every few seconds
// @Tags Widget
// @Accept json
// @Produce json
// @Param body body submitRequest true "Comment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.OpResponseStruct
// @Failure 429 {object} utils.OpResponseStruct
// @Router /widget/comments [post]
func (h *WidgetHandler) Submit(c *fiber.Ctx) error {
	var in submitRequest
	if err := c.BodyParser(&in); err != nil {
		return utils.OpError(c, types.ValidationError("Invalid request body."))
	}

	if in.ThreadID == 0 {
		return utils.OpError(c, types.ValidationError("Missing thread id."))
	}
	if in.AuthorName == "" || in.Message == "" {
		return utils.OpError(c, types.ValidationError("Name and message are required."))
	}
	if !utils.ValidEmail(in.AuthorEmail) {
		return utils.OpError(c, types.ValidationError("Invalid email address."))
	}

	// The widget script resolves its own public address best-effort; the
	// transport peer address is the fallback before the sentinel.
	ip := in.IPAddress
	if ip == "" {
		ip = c.IP()
	}

	throttleKey := c.IP() + "|" + strconv.FormatUint(in.ThreadID, 10)
	err := h.Widget.Submit(c.UserContext(), throttleKey, widget.Submission{
		ThreadID:    in.ThreadID,
		AuthorName:  in.AuthorName,
		AuthorEmail: in.AuthorEmail,
		Message:     in.Message,
		IPAddress:   ip,
	})
	if err != nil {
		return utils.OpError(c, err)
	}

	return utils.OpSuccess(c, fiber.Map{
		"message": "Comment submitted for approval. Thank you!",
	})
}
