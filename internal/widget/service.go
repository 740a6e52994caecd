// Package widget is the resolution engine behind the embeddable comment
// widget. A page load walks site -> thread -> comments, terminal on the
// first failure; comment submission is a separate, repeatable action gated
// by an advisory throttle.
package widget

import (
	"context"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
)

// commentPageSize caps every comment read.
const commentPageSize = 50

// FallbackIP is recorded when the submitter's address cannot be resolved.
const FallbackIP = "0.0.0.0"

// Service resolves widget page loads and accepts comment submissions.
type Service struct {
	nc       *nocode.Client
	cache    *SiteCache
	throttle *Throttle
}

// NewService constructs a Service.
func NewService(nc *nocode.Client, cache *SiteCache, throttle *Throttle) *Service {
	return &Service{nc: nc, cache: cache, throttle: throttle}
}

// Bootstrap is everything a widget needs to render one page.
type Bootstrap struct {
	Site      models.Site
	Supporter bool
	Thread    models.Thread
	Comments  []models.Comment
}

// Bootstrap resolves the site for apiKey, the owner's plan, the thread for
// the page (creating it if absent), and the visible comments, newest first.
// Any stage failing fails the whole load; there is no retry.
func (s *Service) Bootstrap(ctx context.Context, apiKey, pageIdentifier, pageTitle string) (*Bootstrap, error) {
	site, err := s.ResolveSite(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	supporter, err := s.ownerIsSupporter(ctx, site.UserID.Uint64())
	if err != nil {
		return nil, err
	}

	thread, err := s.ResolveThread(ctx, site.ID.Uint64(), pageIdentifier, pageTitle)
	if err != nil {
		return nil, err
	}

	comments, err := s.LoadComments(ctx, thread.ID.Uint64())
	if err != nil {
		return nil, err
	}

	return &Bootstrap{
		Site:      site,
		Supporter: supporter,
		Thread:    thread,
		Comments:  comments,
	}, nil
}

// ResolveSite finds the site whose api_key matches, consulting the cache
// first. A fresh fetch with no match is an invalid key.
func (s *Service) ResolveSite(ctx context.Context, apiKey string) (models.Site, error) {
	if site, ok := s.cache.Get(apiKey); ok {
		return site, nil
	}

	var sites []models.Site
	q := nocode.NewQuery().Eq("api_key", apiKey).Limit(1)
	if _, err := s.nc.Read(ctx, "sites", q, &sites); err != nil {
		return models.Site{}, err
	}
	if len(sites) == 0 {
		return models.Site{}, types.InvalidKeyError()
	}

	s.cache.Put(apiKey, sites[0])
	return sites[0], nil
}

// ResolveThread finds the thread for (siteID, pageIdentifier), creating one
// carrying the page title when absent. Read-then-maybe-create: a concurrent
// load can create a duplicate, which only fragments comment counts.
func (s *Service) ResolveThread(ctx context.Context, siteID uint64, pageIdentifier, pageTitle string) (models.Thread, error) {
	var threads []models.Thread
	q := nocode.NewQuery().
		EqUint("site_id", siteID).
		Eq("page_identifier", pageIdentifier).
		IncludeTotal()
	if _, err := s.nc.Read(ctx, "threads", q, &threads); err != nil {
		return models.Thread{}, err
	}
	if len(threads) > 0 {
		return threads[0], nil
	}

	id, err := s.nc.Create(ctx, "threads", map[string]any{
		"site_id":         siteID,
		"page_identifier": pageIdentifier,
		"page_title":      pageTitle,
	})
	if err != nil {
		return models.Thread{}, err
	}

	return models.Thread{
		ID:             types.FlexUint64(id),
		SiteID:         types.FlexUint64(siteID),
		PageIdentifier: pageIdentifier,
		PageTitle:      pageTitle,
	}, nil
}

// LoadComments returns the visible comments of a thread, newest first,
// capped at 50.
func (s *Service) LoadComments(ctx context.Context, threadID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	q := nocode.NewQuery().
		EqUint("thread_id", threadID).
		EqBool("visible", true).
		Sort("created_at", "desc").
		Limit(commentPageSize).
		IncludeTotal()
	if _, err := s.nc.Read(ctx, "comments", q, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ownerIsSupporter fetches the site owner's plan for the supporter badge.
// A missing owner record renders as free, not as an error.
func (s *Service) ownerIsSupporter(ctx context.Context, userID uint64) (bool, error) {
	var users []models.User
	if _, err := s.nc.Read(ctx, "users", nocode.NewQuery().EqUint("id", userID), &users); err != nil {
		return false, err
	}
	if len(users) == 0 {
		return false, nil
	}
	return users[0].IsSupporter(), nil
}

// Submission is one comment submission from the widget form.
type Submission struct {
	ThreadID    uint64
	AuthorName  string
	AuthorEmail string
	Message     string
	IPAddress   string
}

// Submit creates a not-yet-visible comment. The throttle is checked first;
// a throttled submission is rejected before any network call. The throttle
// stamp is not rolled back on upstream failure.
func (s *Service) Submit(ctx context.Context, throttleKey string, sub Submission) error {
	if !s.throttle.Allow(throttleKey) {
		return &types.Error{
			Kind:    types.KindRateLimit,
			Message: "Wait a few seconds before submitting another comment.",
		}
	}

	ip := sub.IPAddress
	if ip == "" {
		ip = FallbackIP
	}

	_, err := s.nc.Create(ctx, "comments", map[string]any{
		"thread_id":    sub.ThreadID,
		"author_name":  sub.AuthorName,
		"author_email": sub.AuthorEmail,
		"message":      sub.Message,
		"ip_address":   ip,
		"visible":      false,
	})
	return err
}
