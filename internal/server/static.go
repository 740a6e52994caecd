package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/recorre/indie-comments-cloud/web"
)

// registerStatic mounts the embedded assets. The demo page and widget
// script live at the root; the admin panel under /painel. Registered
// after the API routes so /api always wins.
func registerStatic(app *fiber.App) {
	app.Use("/painel", filesystem.New(filesystem.Config{
		Root:       http.FS(web.Assets),
		PathPrefix: "painel",
		Index:      "index.html",
	}))

	app.Use("/", filesystem.New(filesystem.Config{
		Root:       http.FS(web.Assets),
		PathPrefix: "public",
		Index:      "index.html",
	}))
}
