// Package models holds the wire models for the four entities owned by the
// remote data service. This system never stores authoritative state; these
// structs only describe what travels over the wire.
package models

import (
	"github.com/recorre/indie-comments-cloud/internal/types"
)

// Plan values. Anything outside this set is treated like a paid plan for
// the site limit but like a free plan for the supporter badge, matching the
// behavior the product shipped with.
const (
	PlanFree = "free"
	PlanPaid = "paid"
)

// User is an account in the admin panel. PasswordHash never leaves the
// gateway; Public() strips it before a user travels to a client.
type User struct {
	ID           types.FlexUint64 `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"password_hash,omitempty"`
	Plan         string           `json:"plan"`
}

// Public returns a copy safe to return to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// SiteLimit returns how many sites the user's plan allows.
func (u User) SiteLimit() int {
	if u.Plan == PlanFree {
		return 1
	}
	return 3
}

// IsSupporter reports whether the widget should show the supporter badge.
func (u User) IsSupporter() bool {
	return u.Plan == PlanPaid
}

// Site is a registered third-party site, identified to the widget by an
// opaque api_key of the form ic_<timestamp>_<random>.
type Site struct {
	ID       types.FlexUint64 `json:"id"`
	UserID   types.FlexUint64 `json:"user_id"`
	SiteURL  string           `json:"site_url"`
	SiteName string           `json:"site_name"`
	APIKey   string           `json:"api_key"`
}

// Thread groups the comments of one page of a site. At most one thread per
// (site_id, page_identifier) pair, enforced by read-then-create-if-absent
// with no uniqueness constraint behind it.
type Thread struct {
	ID             types.FlexUint64 `json:"id"`
	SiteID         types.FlexUint64 `json:"site_id"`
	PageIdentifier string           `json:"page_identifier"`
	PageTitle      string           `json:"page_title"`
}

// Comment is created with Visible=false and becomes visible only through
// explicit moderation approval; rejection deletes it outright.
type Comment struct {
	ID          types.FlexUint64 `json:"id"`
	ThreadID    types.FlexUint64 `json:"thread_id"`
	AuthorName  string           `json:"author_name"`
	AuthorEmail string           `json:"author_email"`
	Message     string           `json:"message"`
	IPAddress   string           `json:"ip_address"`
	Visible     types.FlexBool   `json:"visible"`
	CreatedAt   string           `json:"created_at"`
}
