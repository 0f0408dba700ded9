package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/infrastructure/cache"
	"github.com/nutricoach/backend/internal/infrastructure/memstore"
	"github.com/nutricoach/backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubExtractor struct {
	lastMime string
	err      error
}

func (s *stubExtractor) result() (*domain.MealExtraction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.MealExtraction{
		Items:        []domain.MealItem{{ID: "i1", Name: "Eggs", Servings: 2, Macros: domain.Macros{Calories: 180, Protein: 12, Carbs: 2, Fat: 14}}},
		MealCategory: domain.MealBreakfast,
		TotalMacros:  domain.Macros{Calories: 180, Protein: 12, Carbs: 2, Fat: 14},
	}, nil
}

func (s *stubExtractor) ExtractFromText(ctx context.Context, text string) (*domain.MealExtraction, error) {
	return s.result()
}

func (s *stubExtractor) ExtractFromTranscript(ctx context.Context, transcript string) (*domain.MealExtraction, error) {
	return s.result()
}

func (s *stubExtractor) ExtractFromImage(ctx context.Context, image []byte, mimeType string) (*domain.MealExtraction, error) {
	s.lastMime = mimeType
	return s.result()
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type testEnv struct {
	router    *gin.Engine
	extractor *stubExtractor
}

// setupTestRouter wires the real services over in-memory stores
func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Cache: config.CacheConfig{Type: "memory", TTL: time.Hour},
	}

	store := memstore.New()
	memCache := cache.NewMemoryCache()
	t.Cleanup(memCache.Close)
	extractor := &stubExtractor{}

	handler := NewHandler(Services{
		Profiles: usecase.NewProfileService(store, memCache),
		Targets:  usecase.NewTargetService(store),
		Meals:    usecase.NewMealService(store, store, memCache, extractor, usecase.MealServiceConfig{}),
		Recaps:   usecase.NewRecapService(store, store, store, memCache, usecase.RecapServiceConfig{}),
	})

	return &testEnv{router: SetupRouter(cfg, handler), extractor: extractor}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const bodyweightProfile = `{"age": 30, "gender": "male", "unit": "metric", "height": 180, "weight": 80, "activityLevel": "sedentary"}`

const bodyweightGoal = `{"type": "weight-loss", "calculationStrategy": "bodyweight", "adjustmentPercentage": -0.2,
	"proteinPerBodyweight": 2.2, "remainingSplit": {"carbs": 0.5, "fat": 0.5}}`

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestRouter(t)

		w := env.do(t, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[map[string]interface{}](t, w)
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "nutricoach-backend", response["service"])
		assert.NotEmpty(t, response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		env := setupTestRouter(t)
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
			w := env.do(t, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, method)
		}
	})

	t.Run("reports unreachable database", func(t *testing.T) {
		handler := NewHandler(Services{Database: stubPinger{err: errors.New("down")}})
		router := SetupRouter(&config.Config{}, handler)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", decode[map[string]interface{}](t, w)["status"])
	})
}

func TestCalculateTargetsEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	t.Run("computes breakdown", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/targets/calculate",
			`{"profile": `+bodyweightProfile+`, "goal": `+bodyweightGoal+`}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[map[string]interface{}](t, w)
		assert.Equal(t, 1780.0, got["bmr"])
		assert.Equal(t, 2136.0, got["tdee"])
		assert.Equal(t, 1709.0, got["calorieTarget"])
		assert.Equal(t, map[string]interface{}{"calories": 1709.0, "protein": 176.0, "carbs": 126.0, "fat": 56.0}, got["macros"])
	})

	t.Run("incomplete profile is unprocessable", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/targets/calculate", `{"profile": {"age": 30}, "goal": `+bodyweightGoal+`}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decode[map[string]string](t, w)["error"], "cannot be determined")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/targets/calculate", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProfileAndGoalEndpoints(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/v1/users/u1/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/targets", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", bodyweightProfile)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", `{"activityLevel": "extreme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", `{"timezone": "Nowhere/Land"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/users/u1/goal", bodyweightGoal)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/goal", "")
	require.Equal(t, http.StatusOK, w.Code)
	goal := decode[domain.UserGoal](t, w)
	assert.Equal(t, domain.StrategyBodyweight, goal.Strategy)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/targets", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1709.0, decode[map[string]interface{}](t, w)["calorieTarget"])

	// switching to percentage-based with a custom split
	w = env.do(t, http.MethodPatch, "/api/v1/users/u1/goal",
		`{"calculationStrategy": "calories-percentage-based", "split": {"protein": 0.4, "carbs": 0.3, "fat": 0.3}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/targets", "")
	require.Equal(t, http.StatusOK, w.Code)
	breakdown := decode[struct {
		Macros domain.Macros `json:"macros"`
	}](t, w)
	assert.Equal(t, domain.Macros{Calories: 1709, Protein: 171, Carbs: 128, Fat: 57}, breakdown.Macros)
}

func TestMealEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/v1/users/u1/profile", bodyweightProfile).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/v1/users/u1/goal", bodyweightGoal).Code)

	w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals", `{
		"mealCategory": "lunch",
		"timestamp": "2024-03-02T12:00:00Z",
		"items": [
			{"name": "Rice", "macros": {"calories": 200, "protein": 4, "carbs": 44, "fat": 1}},
			{"name": "Chicken", "macros": {"calories": 300, "protein": 50, "carbs": 0, "fat": 10}}
		]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[domain.MealEntry](t, w)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, domain.Macros{Calories: 500, Protein: 54, Carbs: 44, Fat: 11}, entry.Macros)

	w = env.do(t, http.MethodPost, "/api/v1/users/u1/meals", `{"items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/meals?date=2024-03-02", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]domain.MealEntry](t, w)["meals"], 1)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/daily?date=2024-03-02", "")
	require.Equal(t, http.StatusOK, w.Code)
	daily := decode[usecase.DailySummary](t, w)
	assert.Equal(t, 500.0, daily.Totals.Calories)
	require.NotNil(t, daily.Target)
	assert.Equal(t, 1709.0, daily.Target.Calories)
	assert.Equal(t, 1209.0, daily.Remaining.Calories)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/daily?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/recap?start=2024-03-01&end=2024-03-03", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recap := decode[domain.RecapMetrics](t, w)
	assert.Equal(t, 3, recap.TotalDays)
	assert.Equal(t, 0, recap.TargetMetDays.Count)
	assert.InDelta(t, 500.0/3, recap.Average.Calories, 1e-9)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/recap?start=2024-03-03&end=2024-03-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/users/u1/recap/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/users/u1/meals/"+entry.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/users/u1/meals/"+entry.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the cached recap was invalidated by the delete
	w = env.do(t, http.MethodGet, "/api/v1/users/u1/recap?start=2024-03-01&end=2024-03-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode[domain.RecapMetrics](t, w).Average.Calories)
}

func TestRecapEndpoint_NoTarget(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(t, http.MethodGet, "/api/v1/users/u1/recap", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestExtractMealEndpoint(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		env := setupTestRouter(t)
		w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals/extract", `{"text": "two eggs"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[domain.MealExtraction](t, w)
		assert.Equal(t, domain.MealBreakfast, got.MealCategory)
		assert.Equal(t, 180.0, got.TotalMacros.Calories)
	})

	t.Run("image data URL", func(t *testing.T) {
		env := setupTestRouter(t)
		image := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
		w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals/extract", `{"image": "data:image/jpeg;base64,`+image+`"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/jpeg", env.extractor.lastMime)
	})

	t.Run("bad base64", func(t *testing.T) {
		env := setupTestRouter(t)
		w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals/extract", `{"image": "%%%"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no input", func(t *testing.T) {
		env := setupTestRouter(t)
		w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals/extract", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		env := setupTestRouter(t)
		env.extractor.err = domain.ErrExtractionFailed
		w := env.do(t, http.MethodPost, "/api/v1/users/u1/meals/extract", `{"text": "two eggs"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "meal analysis failed", decode[map[string]string](t, w)["error"])
	})
}

func TestDecodeImage(t *testing.T) {
	img, mime, err := decodeImage("aGk=", "image/png")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), img)
	assert.Equal(t, "image/png", mime)

	_, mime, err = decodeImage("data:image/webp;base64,aGk=", "")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mime)

	_, _, err = decodeImage("data:image/webp;base64", "")
	assert.Error(t, err)

	img, _, err = decodeImage("", "")
	require.NoError(t, err)
	assert.Nil(t, img)
}
