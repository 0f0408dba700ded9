package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// PrefixDeleter is implemented by caches that can drop every key sharing a prefix.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// ProfileRepository stores user profiles and goals.
// Get methods return ErrProfileNotFound / ErrGoalNotFound when nothing is stored.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpsertProfile(ctx context.Context, profile *UserProfile) error
	GetGoal(ctx context.Context, userID string) (*UserGoal, error)
	UpsertGoal(ctx context.Context, goal *UserGoal) error
	ListUserIDs(ctx context.Context) ([]string, error)

	// UpdateProfile passes the stored profile (nil when there is none) to
	// update and stores what it returns. Concurrent updates of the same
	// user's profile are serialized, so none is lost. update must not call
	// back into the repository.
	UpdateProfile(ctx context.Context, userID string, update func(current *UserProfile) (*UserProfile, error)) (*UserProfile, error)
	// UpdateGoal is UpdateProfile for the user's goal.
	UpdateGoal(ctx context.Context, userID string, update func(current *UserGoal) (*UserGoal, error)) (*UserGoal, error)
}

// MealRepository stores meal entries.
type MealRepository interface {
	// ListMeals returns the user's entries with from <= timestamp < to,
	// ordered by timestamp.
	ListMeals(ctx context.Context, userID string, from, to time.Time) ([]MealEntry, error)
	GetMeal(ctx context.Context, userID, mealID string) (*MealEntry, error)
	CreateMeal(ctx context.Context, entry *MealEntry) error
	DeleteMeal(ctx context.Context, userID, mealID string) error
}

// RecapStore persists recaps computed by the batch job.
type RecapStore interface {
	SaveCachedRecap(ctx context.Context, recap *CachedRecap) error
	GetCachedRecap(ctx context.Context, userID string) (*CachedRecap, error)
}

// MealExtractor turns free text, a voice transcript or a photo into a
// structured meal estimate.
type MealExtractor interface {
	ExtractFromText(ctx context.Context, text string) (*MealExtraction, error)
	ExtractFromTranscript(ctx context.Context, transcript string) (*MealExtraction, error)
	ExtractFromImage(ctx context.Context, image []byte, mimeType string) (*MealExtraction, error)
}
