// moderation_service.go
//
// The moderation queue. Pending reads fan out in three stages (sites of the
// user, threads of those sites, invisible comments of those threads) with
// empty-result short-circuits, newest first, capped at 50. Approval flips
// the visible flag; rejection deletes the comment outright.

package services

import (
	"context"

	"github.com/recorre/indie-comments-cloud/internal/models"
	"github.com/recorre/indie-comments-cloud/internal/nocode"
	"github.com/recorre/indie-comments-cloud/internal/types"
)

// pendingLimit caps the moderation queue read.
const pendingLimit = 50

// ModerationService handles the approve/reject queue for panel users.
type ModerationService struct {
	nc *nocode.Client
}

// NewModerationService constructs a ModerationService.
func NewModerationService(nc *nocode.Client) *ModerationService {
	return &ModerationService{nc: nc}
}

// Pending returns up to 50 not-yet-visible comments across every thread of
// every site the user owns, newest first. Any empty intermediate stage
// short-circuits to an empty list without further calls.
func (s *ModerationService) Pending(ctx context.Context, userID uint64) ([]models.Comment, error) {
	var sites []models.Site
	q := nocode.NewQuery().EqUint("user_id", userID).IncludeTotal()
	if _, err := s.nc.Read(ctx, "sites", q, &sites); err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, nil
	}

	siteIDs := make([]uint64, len(sites))
	for i, site := range sites {
		siteIDs[i] = site.ID.Uint64()
	}

	var threads []models.Thread
	q = nocode.NewQuery().In("site_id", siteIDs).IncludeTotal()
	if _, err := s.nc.Read(ctx, "threads", q, &threads); err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, nil
	}

	threadIDs := make([]uint64, len(threads))
	for i, thread := range threads {
		threadIDs[i] = thread.ID.Uint64()
	}

	var comments []models.Comment
	q = nocode.NewQuery().
		EqBool("visible", false).
		In("thread_id", threadIDs).
		Sort("created_at", "desc").
		Limit(pendingLimit).
		IncludeTotal()
	if _, err := s.nc.Read(ctx, "comments", q, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Approve marks a comment visible after verifying ownership.
func (s *ModerationService) Approve(ctx context.Context, userID, commentID uint64) error {
	if err := s.verifyOwnership(ctx, userID, commentID); err != nil {
		return err
	}
	return s.nc.Update(ctx, "comments", commentID, map[string]any{"visible": true})
}

// Reject deletes a comment after verifying ownership. There is no
// soft-delete; a rejected comment is gone from all subsequent reads.
func (s *ModerationService) Reject(ctx context.Context, userID, commentID uint64) error {
	if err := s.verifyOwnership(ctx, userID, commentID); err != nil {
		return err
	}
	return s.nc.Delete(ctx, "comments", commentID)
}

// verifyOwnership walks comment -> thread -> site and checks the site is
// owned by userID.
func (s *ModerationService) verifyOwnership(ctx context.Context, userID, commentID uint64) error {
	var comments []models.Comment
	if _, err := s.nc.Read(ctx, "comments", nocode.NewQuery().EqUint("id", commentID), &comments); err != nil {
		return err
	}
	if len(comments) == 0 {
		return types.ValidationError("Comment not found.")
	}

	var threads []models.Thread
	q := nocode.NewQuery().EqUint("id", comments[0].ThreadID.Uint64())
	if _, err := s.nc.Read(ctx, "threads", q, &threads); err != nil {
		return err
	}
	if len(threads) == 0 {
		return types.ValidationError("Comment not found.")
	}

	var sites []models.Site
	q = nocode.NewQuery().EqUint("id", threads[0].SiteID.Uint64())
	if _, err := s.nc.Read(ctx, "sites", q, &sites); err != nil {
		return err
	}
	if len(sites) == 0 || sites[0].UserID.Uint64() != userID {
		return types.AuthError("Comment belongs to another account.")
	}
	return nil
}
