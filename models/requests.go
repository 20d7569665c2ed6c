package models

import "time"

// LoginRequest mints or refreshes a token for an externally-issued identity.
type LoginRequest struct {
	Token      string `json:"token,omitempty"`
	ExternalID string `json:"externalId,omitempty"`
	Nickname   string `json:"nickname,omitempty"`
	Tier       string `json:"tier,omitempty"`
}

// SessionCreateRequest creates a session. Exactly one of LocationID or
// Address must be supplied; an address is geocoded into a new location,
// temporary unless SaveLocation is set.
type SessionCreateRequest struct {
	Title        string    `json:"title" binding:"required"`
	ScheduledAt  time.Time `json:"scheduledAt" binding:"required"`
	LocationID   *uint     `json:"locationId,omitempty"`
	Address      string    `json:"address,omitempty"`
	IsPrivate    bool      `json:"isPrivate,omitempty"`
	SaveLocation bool      `json:"saveLocation,omitempty"`
}

// SessionUpdateRequest edits a session's date or location, host only.
type SessionUpdateRequest struct {
	Title       string     `json:"title,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	LocationID  *uint      `json:"locationId,omitempty"`
	Address     string     `json:"address,omitempty"`
}

// JoinRequest claims a slot. The search location is reused when an id is
// given, otherwise the address is geocoded into a temporary location.
type JoinRequest struct {
	SearchLocationID *uint  `json:"searchLocationId,omitempty"`
	SearchAddress    string `json:"searchAddress,omitempty"`
}

// SearchRequest is a proximity search by saved location or free address.
type SearchRequest struct {
	LocationID  *uint   `json:"locationId,omitempty"`
	Address     string  `json:"address,omitempty"`
	RadiusMiles float64 `json:"radiusMiles" binding:"required"`
}

// BanRequest removes and bans a participant from the host's sessions.
type BanRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// LocationCreateRequest saves a permanent address for the caller.
type LocationCreateRequest struct {
	Address   string `json:"address" binding:"required"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
}

// MessageRequest posts or edits a chat message.
type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SavedSearchRequest registers a standing proximity query.
type SavedSearchRequest struct {
	LocationID  uint    `json:"locationId" binding:"required"`
	RadiusMiles float64 `json:"radiusMiles" binding:"required"`
}
