// Package memstore keeps profiles, goals, meals and recaps in process memory.
// It backs the server when no database is configured and in tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nutricoach/backend/internal/domain"
)

// Store is a thread-safe in-memory implementation of
// domain.ProfileRepository, domain.MealRepository and domain.RecapStore.
type Store struct {
	mutex    sync.RWMutex
	profiles map[string]domain.UserProfile
	goals    map[string]domain.UserGoal
	meals    map[string][]domain.MealEntry
	recaps   map[string]domain.CachedRecap
}

// New creates an empty store
func New() *Store {
	return &Store{
		profiles: make(map[string]domain.UserProfile),
		goals:    make(map[string]domain.UserGoal),
		meals:    make(map[string][]domain.MealEntry),
		recaps:   make(map[string]domain.CachedRecap),
	}
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (s *Store) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *Store) GetGoal(ctx context.Context, userID string) (*domain.UserGoal, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	g, ok := s.goals[userID]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	return copyGoal(g), nil
}

func (s *Store) UpsertGoal(ctx context.Context, goal *domain.UserGoal) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.goals[goal.UserID] = *copyGoal(*goal)
	return nil
}

// UpdateProfile runs update under the store lock
func (s *Store) UpdateProfile(ctx context.Context, userID string, update func(current *domain.UserProfile) (*domain.UserProfile, error)) (*domain.UserProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var current *domain.UserProfile
	if p, ok := s.profiles[userID]; ok {
		current = &p
	}
	next, err := update(current)
	if err != nil {
		return nil, err
	}
	s.profiles[userID] = *next
	stored := *next
	return &stored, nil
}

// UpdateGoal runs update under the store lock
func (s *Store) UpdateGoal(ctx context.Context, userID string, update func(current *domain.UserGoal) (*domain.UserGoal, error)) (*domain.UserGoal, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var current *domain.UserGoal
	if g, ok := s.goals[userID]; ok {
		current = copyGoal(g)
	}
	next, err := update(current)
	if err != nil {
		return nil, err
	}
	s.goals[userID] = *copyGoal(*next)
	return copyGoal(*next), nil
}

// ListUserIDs returns every user with a profile, sorted
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListMeals returns entries with from <= timestamp < to, oldest first
func (s *Store) ListMeals(ctx context.Context, userID string, from, to time.Time) ([]domain.MealEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries := []domain.MealEntry{}
	for _, e := range s.meals[userID] {
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		entries = append(entries, copyEntry(e))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

func (s *Store) GetMeal(ctx context.Context, userID, mealID string) (*domain.MealEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, e := range s.meals[userID] {
		if e.ID == mealID {
			entry := copyEntry(e)
			return &entry, nil
		}
	}
	return nil, domain.ErrMealNotFound
}

func (s *Store) CreateMeal(ctx context.Context, entry *domain.MealEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.meals[entry.UserID] = append(s.meals[entry.UserID], copyEntry(*entry))
	return nil
}

func (s *Store) DeleteMeal(ctx context.Context, userID, mealID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries := s.meals[userID]
	for i, e := range entries {
		if e.ID == mealID {
			s.meals[userID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return domain.ErrMealNotFound
}

func (s *Store) SaveCachedRecap(ctx context.Context, recap *domain.CachedRecap) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.recaps[recap.UserID] = *recap
	return nil
}

// GetCachedRecap returns the latest batch recap or domain.ErrCacheMiss
func (s *Store) GetCachedRecap(ctx context.Context, userID string) (*domain.CachedRecap, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, ok := s.recaps[userID]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &r, nil
}

func copyGoal(g domain.UserGoal) *domain.UserGoal {
	if g.Split != nil {
		split := *g.Split
		g.Split = &split
	}
	if g.RemainingSplit != nil {
		split := *g.RemainingSplit
		g.RemainingSplit = &split
	}
	return &g
}

func copyEntry(e domain.MealEntry) domain.MealEntry {
	e.Items = append([]domain.MealItem(nil), e.Items...)
	return e
}
