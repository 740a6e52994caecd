// proxy.go
//
// The generic passthrough to the no-code data service. Opaque byte relay:
// the upstream status code and body travel back verbatim; only a fixed
// allow-list of response headers is relayed. Inbound headers are copied
// minus a deny-list of hop-by-hop and browser fetch-metadata headers, then
// the instance identifier and bearer credential are injected last so a
// caller can never override them.

package handlers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/config"
	"github.com/recorre/indie-comments-cloud/internal/types"
)

// strippedRequestHeaders are never forwarded upstream.
var strippedRequestHeaders = map[string]struct{}{
	"Host":           {},
	"Content-Length": {},
	"Origin":         {},
	"Referer":        {},
	"Sec-Fetch-Dest": {},
	"Sec-Fetch-Mode": {},
	"Sec-Fetch-Site": {},
	"Connection":     {},
	"If-None-Match":  {},
	"Priority":       {},
}

// relayedResponseHeaders is the allow-list of upstream response headers
// passed back to the caller.
var relayedResponseHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Cache-Control",
	"Expires",
	"Last-Modified",
}

// expectedRequestHeaders are the inbound headers a browser or SDK client
// normally sends. Anything else that survives the strip is forwarded
// unexamined; it is logged so the passthrough stays visible.
var expectedRequestHeaders = map[string]struct{}{
	"Accept":          {},
	"Accept-Encoding": {},
	"Accept-Language": {},
	"Authorization":   {},
	"Content-Type":    {},
	"Cookie":          {},
	"User-Agent":      {},
	"X-Forwarded-For": {},
	"X-Request-Id":    {},
}

// ProxyHandler forwards /api/proxy/* calls to the upstream data service.
type ProxyHandler struct {
	Cfg  *config.Config
	HTTP *http.Client
}

// Forward handles ANY /api/proxy/*
// @Summary Generic upstream passthrough
// @Description Forwards the request to the no-code data service with the server credential injected
// @Tags Proxy
// @Accept json
// @Produce json
// @Param path path string true "Upstream path, e.g. read/comments"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /proxy/{path} [get]
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	if h.Cfg.UpstreamAPIKey == "" {
		return types.ConfigError(
			"NoCodeBackend API key not configured on server. Set NOCODEBACKEND_API_KEY in your environment")
	}

	target := strings.TrimSuffix(h.Cfg.UpstreamBaseURL, "/") + "/" + c.Params("*")
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		target += "?" + qs
	}

	var body io.Reader
	method := c.Method()
	if method != fiber.MethodGet && method != fiber.MethodHead {
		body = bytes.NewReader(c.Body())
	}

	req, err := http.NewRequestWithContext(c.UserContext(), method, target, body)
	if err != nil {
		return &types.Error{Kind: types.KindNetwork, Message: "Proxy request failed"}
	}

	var extra []string
	c.Request().Header.VisitAll(func(key, value []byte) {
		name := textproto.CanonicalMIMEHeaderKey(string(key))
		if _, strip := strippedRequestHeaders[name]; strip {
			return
		}
		if _, known := expectedRequestHeaders[name]; !known {
			extra = append(extra, name)
		}
		req.Header.Add(name, string(value))
	})
	if len(extra) > 0 {
		log.Printf("proxy: forwarding unexamined headers: %s", strings.Join(extra, ", "))
	}

	// Injected values always win over whatever the caller sent.
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Instance", h.Cfg.UpstreamInstance)
	req.Header.Set("Authorization", "Bearer "+h.Cfg.UpstreamAPIKey)

	resp, err := h.HTTP.Do(req)
	if err != nil {
		log.Printf("proxy: upstream request failed: %v", err)
		return &types.Error{Kind: types.KindNetwork, Message: "Proxy request failed"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("proxy: reading upstream response failed: %v", err)
		return &types.Error{Kind: types.KindNetwork, Message: "Proxy request failed"}
	}

	for _, name := range relayedResponseHeaders {
		if v := resp.Header.Get(name); v != "" {
			c.Set(name, v)
		}
	}

	return c.Status(resp.StatusCode).Send(raw)
}
