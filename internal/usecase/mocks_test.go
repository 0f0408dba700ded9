package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nutricoach/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
// and domain.PrefixDeleter
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string]interface{}
	getCalls int
	setCalls int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]interface{})}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func (m *MockCacheRepository) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// MockMealExtractor is a mock implementation of domain.MealExtractor
type MockMealExtractor struct {
	result *domain.MealExtraction
	err    error
	calls  []string
	// byCall overrides result for a specific call, e.g. "text:eggs"
	byCall map[string]*domain.MealExtraction
}

func (m *MockMealExtractor) respond(call string) (*domain.MealExtraction, error) {
	m.calls = append(m.calls, call)
	if result, ok := m.byCall[call]; ok {
		return result, m.err
	}
	return m.result, m.err
}

func (m *MockMealExtractor) ExtractFromText(ctx context.Context, text string) (*domain.MealExtraction, error) {
	return m.respond("text:" + text)
}

func (m *MockMealExtractor) ExtractFromTranscript(ctx context.Context, transcript string) (*domain.MealExtraction, error) {
	return m.respond("transcript:" + transcript)
}

func (m *MockMealExtractor) ExtractFromImage(ctx context.Context, image []byte, mimeType string) (*domain.MealExtraction, error) {
	return m.respond("image:" + mimeType)
}

// hookedMealRepository runs afterList once, after the wrapped ListMeals returned
type hookedMealRepository struct {
	domain.MealRepository
	afterList func()
}

func (h *hookedMealRepository) ListMeals(ctx context.Context, userID string, from, to time.Time) ([]domain.MealEntry, error) {
	entries, err := h.MealRepository.ListMeals(ctx, userID, from, to)
	if hook := h.afterList; hook != nil {
		h.afterList = nil
		hook()
	}
	return entries, err
}

var errStoreDown = errors.New("store down")

// failingProfileRepository fails every call
type failingProfileRepository struct{}

func (failingProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return nil, errStoreDown
}

func (failingProfileRepository) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	return errStoreDown
}

func (failingProfileRepository) GetGoal(ctx context.Context, userID string) (*domain.UserGoal, error) {
	return nil, errStoreDown
}

func (failingProfileRepository) UpsertGoal(ctx context.Context, goal *domain.UserGoal) error {
	return errStoreDown
}

func (failingProfileRepository) UpdateProfile(ctx context.Context, userID string, update func(*domain.UserProfile) (*domain.UserProfile, error)) (*domain.UserProfile, error) {
	return nil, errStoreDown
}

func (failingProfileRepository) UpdateGoal(ctx context.Context, userID string, update func(*domain.UserGoal) (*domain.UserGoal, error)) (*domain.UserGoal, error) {
	return nil, errStoreDown
}

func (failingProfileRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	return nil, errStoreDown
}

func ptr[T any](v T) *T {
	return &v
}

// seedUser stores a 30-year-old sedentary 80 kg / 180 cm male on a 20%
// deficit with 2.2 g/kg protein, whose target is {1709, 176, 126, 56}.
func seedUser(ctx context.Context, repo domain.ProfileRepository, userID, timezone string) {
	_ = repo.UpsertProfile(ctx, &domain.UserProfile{
		UserID:        userID,
		Age:           30,
		Gender:        domain.GenderMale,
		UnitSystem:    domain.UnitMetric,
		Height:        180,
		Weight:        80,
		ActivityLevel: domain.ActivitySedentary,
		Timezone:      timezone,
	})
	_ = repo.UpsertGoal(ctx, &domain.UserGoal{
		UserID:               userID,
		Type:                 domain.GoalWeightLoss,
		Strategy:             domain.StrategyBodyweight,
		AdjustmentPercentage: -0.20,
		ProteinPerBodyweight: 2.2,
		RemainingSplit:       &domain.RemainingSplit{Carbs: 0.5, Fat: 0.5},
	})
}

var seededTarget = domain.Macros{Calories: 1709, Protein: 176, Carbs: 126, Fat: 56}
