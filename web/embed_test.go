package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAsset(t *testing.T, path string) string {
	t.Helper()
	raw, err := Assets.ReadFile(path)
	require.NoError(t, err, "asset %s must be embedded", path)
	return string(raw)
}

func TestWidgetScriptFeatures(t *testing.T) {
	js := readAsset(t, "public/widget.js")

	// Empty thread shows an invitation instead of a bare zero count.
	assert.Contains(t, js, "Be the first to comment!")

	// Paid owners get the badge next to the heading; free ones get the credit.
	assert.Contains(t, js, "ic-supporter-badge")
	assert.Contains(t, js, "Supporter")
	assert.Contains(t, js, "Powered by Indie Comments")

	// Accepted submissions confirm with a banner that removes itself.
	assert.Contains(t, js, "ic-success")
	assert.Contains(t, js, "banner.remove()")
	assert.Contains(t, js, "5000")

	// Resubmits inside the cooldown are rejected before any fetch happens.
	assert.Contains(t, js, "SUBMIT_COOLDOWN_MS = 3000")
	assert.Contains(t, js, "state.lastSubmitAt")
}

func TestPanelUpgradeFlow(t *testing.T) {
	html := readAsset(t, "painel/index.html")
	js := readAsset(t, "painel/js/app.js")

	assert.Contains(t, html, `id="upgrade-form"`)
	assert.Contains(t, html, `id="payment-proof"`)
	assert.Contains(t, html, `id="upgrade-error"`)

	// The form posts the proof to the panel API and refreshes the plan line.
	assert.Contains(t, js, "'/upgrade'")
	assert.Contains(t, js, "payment_proof")
	assert.Contains(t, js, "loadMe()")

	// The box only shows for accounts that still have something to upgrade.
	assert.Contains(t, js, "upgrade-box")
	assert.Contains(t, js, "'paid'")
}
