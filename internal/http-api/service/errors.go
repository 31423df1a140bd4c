package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes; anything unrecognized surfaces as an internal error.
var (
	// Validation
	ErrPreferencesRequired = errors.New("reading preferences required before generating recommendations")
	ErrRatingRequired      = errors.New("rating is required when status is read")

	// Not found
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrUserBookNotFound       = errors.New("user book not found")
	ErrPreferencesNotFound    = errors.New("preferences not found")

	// Conflict
	ErrAlreadyInCollection = errors.New("book already exists in user's collection")
	ErrPreferencesExist    = errors.New("preferences already exist for this user")
	ErrPendingExists       = errors.New("a pending recommendation already exists")
	ErrAlreadyResolved     = errors.New("recommendation has already been accepted or rejected")
	ErrGenerationInFlight  = errors.New("a recommendation is already being generated")

	// Ownership
	ErrNotOwner = errors.New("user does not own this recommendation")
)
