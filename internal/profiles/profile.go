// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package profiles holds the public profile of a marketplace user.
package profiles

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user has no profile row.
var ErrNotFound = errors.New("profile not found")

// Profile is the user-facing account record.
type Profile struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FullName          string `json:"full_name"`
	Location          string `json:"location"`
	FavoritePlantType string `json:"favorite_plant_type"`
	AvatarURL         string `json:"avatar_url"`
}

// Store looks up profiles.
type Store interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

// DisplayName returns the name shown on a listing: the full name, or the
// email when no name is set.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
