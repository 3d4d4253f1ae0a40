package models

import (
	"strings"
	"time"
)

// Visitor is one row of the visitor ledger: a distinct entity that has been
// observed in the account's dialog listing at least once.
type Visitor struct {
	EntityID        int64     `json:"entity_id"`
	DisplayName     string    `json:"display_name"`
	Handle          string    `json:"handle,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	IsContact       bool      `json:"is_contact"`
	IsMutualContact bool      `json:"is_mutual_contact"`
	IsPremium       bool      `json:"is_premium"`
	IsVerified      bool      `json:"is_verified"`
	IsScam          bool      `json:"is_scam"`
	IsFake          bool      `json:"is_fake"`
	Bio             string    `json:"bio,omitempty"`
	PhotoCount      int       `json:"photo_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Aggregates filled by ListVisitors; zero for a plain ledger row.
	VisitCount int       `json:"visit_count"`
	FirstVisit time.Time `json:"first_visit"`
	LastVisit  time.Time `json:"last_visit"`
}

// Suspicious reports whether the platform flagged the entity as scam or fake.
func (v *Visitor) Suspicious() bool {
	return v.IsScam || v.IsFake
}

// RawEntity is what the snapshot source returns for one visible entity.
type RawEntity struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	Phone           string `json:"phone,omitempty"`
	IsContact       bool   `json:"is_contact"`
	IsMutualContact bool   `json:"is_mutual_contact"`
	IsPremium       bool   `json:"is_premium"`
	IsVerified      bool   `json:"is_verified"`
	IsScam          bool   `json:"is_scam"`
	IsFake          bool   `json:"is_fake"`
	Bio             string `json:"bio,omitempty"`
	PhotoCount      int    `json:"photo_count"`
}

// DisplayName joins the name parts the way the listing shows them.
func (e *RawEntity) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

// Visitor converts a raw snapshot entity into a ledger row. CreatedAt and
// UpdatedAt are left for the store to fill.
func (e *RawEntity) Visitor() *Visitor {
	return &Visitor{
		EntityID:        e.ID,
		DisplayName:     e.DisplayName(),
		Handle:          e.Username,
		Phone:           e.Phone,
		IsContact:       e.IsContact,
		IsMutualContact: e.IsMutualContact,
		IsPremium:       e.IsPremium,
		IsVerified:      e.IsVerified,
		IsScam:          e.IsScam,
		IsFake:          e.IsFake,
		Bio:             e.Bio,
		PhotoCount:      e.PhotoCount,
	}
}
