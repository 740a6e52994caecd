// site_service.go
//
// Site CRUD with the plan limit check. The limit is enforced by counting
// existing sites before insert; two concurrent creations can both pass the
// check. The check-then-act sequence is confined to Create so an atomic
// upstream primitive could replace it without touching callers.

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
	"github.com/recorre/indie-comments-cloud/internal/utils"
)

// SiteService handles site registration for panel users.
type SiteService struct {
	nc  *nocode.Client
	now func() time.Time
}

// NewSiteService constructs a SiteService.
func NewSiteService(nc *nocode.Client) *SiteService {
	return &SiteService{nc: nc, now: time.Now}
}

// List returns all sites owned by the user.
func (s *SiteService) List(ctx context.Context, userID uint64) ([]models.Site, error) {
	var sites []models.Site
	q := nocode.NewQuery().EqUint("user_id", userID).IncludeTotal()
	if _, err := s.nc.Read(ctx, "sites", q, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}

// Create registers a site: owner lookup, existing-site count, plan limit
// comparison, URL validity check, key generation, then create, in that
// order, short-circuiting on the first failure.
func (s *SiteService) Create(ctx context.Context, userID uint64, siteURL, siteName string) (models.Site, error) {
	var owners []models.User
	if _, err := s.nc.Read(ctx, "users", nocode.NewQuery().EqUint("id", userID), &owners); err != nil {
		return models.Site{}, err
	}
	if len(owners) == 0 {
		return models.Site{}, types.AuthError("Unknown user.")
	}
	owner := owners[0]

	existing, err := s.List(ctx, userID)
	if err != nil {
		return models.Site{}, err
	}
	if len(existing) >= owner.SiteLimit() {
		return models.Site{}, types.ValidationError(
			fmt.Sprintf("Site limit reached for the %s plan.", owner.Plan))
	}

	if !utils.ValidSiteURL(siteURL) {
		return models.Site{}, types.ValidationError("Invalid URL. Use the form https://mysite.com")
	}

	apiKey := utils.NewSiteKey(s.now())
	id, err := s.nc.Create(ctx, "sites", map[string]any{
		"user_id":   userID,
		"site_url":  siteURL,
		"site_name": siteName,
		"api_key":   apiKey,
	})
	if err != nil {
		return models.Site{}, err
	}

	return models.Site{
		ID:       types.FlexUint64(id),
		UserID:   types.FlexUint64(userID),
		SiteURL:  siteURL,
		SiteName: siteName,
		APIKey:   apiKey,
	}, nil
}

// Delete removes a site after verifying the caller owns it.
func (s *SiteService) Delete(ctx context.Context, userID, siteID uint64) error {
	var sites []models.Site
	if _, err := s.nc.Read(ctx, "sites", nocode.NewQuery().EqUint("id", siteID), &sites); err != nil {
		return err
	}
	if len(sites) == 0 {
		return types.ValidationError("Site not found.")
	}
	if sites[0].UserID.Uint64() != userID {
		return types.AuthError("Site belongs to another account.")
	}
	return s.nc.Delete(ctx, "sites", siteID)
}
