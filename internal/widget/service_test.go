package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/tests/helpers"
)

func newWidget(up *helpers.Upstream, clock func() time.Time) *Service {
	nc := nocode.New(up.URL(), "test_instance", "test-key", 5*time.Second)
	return NewService(nc, NewSiteCache(5*time.Minute, clock), NewThrottle(3*time.Second, clock))
}

func seedSite(up *helpers.Upstream, plan string) (siteID uint64, apiKey string) {
	user := up.Seed("users", map[string]any{"email": "owner@example.com", "plan": plan})
	apiKey = "ic_1700000000000_abc123def"
	siteID = up.Seed("sites", map[string]any{
		"user_id": float64(user), "site_name": "Blog", "api_key": apiKey,
	})
	return
}

func TestResolveSiteUnknownKey(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)

	_, err := svc.ResolveSite(context.Background(), "ic_bogus")
	assert.Equal(t, types.KindInvalidKey, types.KindOf(err))
}

func TestResolveSiteUsesCache(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)
	ctx := context.Background()

	_, apiKey := seedSite(up, "free")

	_, err := svc.ResolveSite(ctx, apiKey)
	require.NoError(t, err)
	after := up.Requests()

	site, err := svc.ResolveSite(ctx, apiKey)
	require.NoError(t, err)
	assert.Equal(t, "Blog", site.SiteName)
	assert.Equal(t, after, up.Requests(), "second resolve must be served from cache")
}

func TestResolveSiteRefetchesAfterTTL(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	clock := newFakeClock()
	svc := newWidget(up, clock.Now)
	ctx := context.Background()

	_, apiKey := seedSite(up, "free")

	_, err := svc.ResolveSite(ctx, apiKey)
	require.NoError(t, err)
	after := up.Requests()

	clock.Advance(6 * time.Minute)
	_, err = svc.ResolveSite(ctx, apiKey)
	require.NoError(t, err)
	assert.Greater(t, up.Requests(), after)
}

func TestResolveThreadCreatesOnce(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)
	ctx := context.Background()

	siteID, _ := seedSite(up, "free")

	first, err := svc.ResolveThread(ctx, siteID, "/post-1", "Post One")
	require.NoError(t, err)
	require.NotZero(t, first.ID.Uint64())

	second, err := svc.ResolveThread(ctx, siteID, "/post-1", "Post One")
	require.NoError(t, err)
	assert.Equal(t, first.ID.Uint64(), second.ID.Uint64())
	assert.Len(t, up.Rows("threads"), 1)

	// A different page gets its own thread.
	_, err = svc.ResolveThread(ctx, siteID, "/post-2", "Post Two")
	require.NoError(t, err)
	assert.Len(t, up.Rows("threads"), 2)
}

func TestBootstrapSupporterBadge(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)
	ctx := context.Background()

	_, apiKey := seedSite(up, "paid")

	result, err := svc.Bootstrap(ctx, apiKey, "/", "Home")
	require.NoError(t, err)
	assert.True(t, result.Supporter)
}

func TestBootstrapMissingOwnerIsNotSupporter(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)

	// Site whose owner record is gone.
	up.Seed("sites", map[string]any{
		"user_id": float64(999), "site_name": "Orphan", "api_key": "ic_orphan",
	})

	result, err := svc.Bootstrap(context.Background(), "ic_orphan", "/", "")
	require.NoError(t, err)
	assert.False(t, result.Supporter)
}

func TestLoadCommentsVisibleOnlyNewestFirst(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)

	siteID, _ := seedSite(up, "free")
	thread := up.Seed("threads", map[string]any{
		"site_id": float64(siteID), "page_identifier": "/",
	})

	up.Seed("comments", map[string]any{
		"thread_id": float64(thread), "message": "hidden", "visible": false,
		"created_at": "2026-01-05 10:00:00",
	})
	up.Seed("comments", map[string]any{
		"thread_id": float64(thread), "message": "older", "visible": true,
		"created_at": "2026-01-01 10:00:00",
	})
	up.Seed("comments", map[string]any{
		"thread_id": float64(thread), "message": "newer", "visible": true,
		"created_at": "2026-01-02 10:00:00",
	})

	comments, err := svc.LoadComments(context.Background(), thread)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "newer", comments[0].Message)
	assert.Equal(t, "older", comments[1].Message)
}

func TestSubmitCreatesHiddenComment(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)

	err := svc.Submit(context.Background(), "1.2.3.4|1", Submission{
		ThreadID:    1,
		AuthorName:  "Visitor",
		AuthorEmail: "v@example.com",
		Message:     "Hello",
		IPAddress:   "",
	})
	require.NoError(t, err)

	rows := up.Rows("comments")
	require.Len(t, rows, 1)
	assert.Equal(t, false, rows[0]["visible"])
	assert.Equal(t, FallbackIP, rows[0]["ip_address"])
}

func TestSubmitThrottledBeforeNetwork(t *testing.T) {
	up := helpers.NewUpstream()
	defer up.Close()
	svc := newWidget(up, nil)
	ctx := context.Background()

	sub := Submission{ThreadID: 1, AuthorName: "V", AuthorEmail: "v@e.co", Message: "m"}
	require.NoError(t, svc.Submit(ctx, "key", sub))
	before := up.Requests()

	err := svc.Submit(ctx, "key", sub)
	assert.Equal(t, types.KindRateLimit, types.KindOf(err))
	assert.Equal(t, before, up.Requests(), "throttled submission must not reach the upstream")
}
