// Package web embeds the static surfaces served alongside the API: the
// demo page with the embeddable widget script, and the admin panel.
package web

import "embed"

//go:embed public painel
var Assets embed.FS
