package http

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/logger"
	"github.com/nutricoach/backend/internal/usecase"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the usecases served over HTTP
type Services struct {
	Profiles *usecase.ProfileService
	Targets  *usecase.TargetService
	Meals    *usecase.MealService
	Recaps   *usecase.RecapService
	Database Pinger // optional
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	profiles *usecase.ProfileService
	targets  *usecase.TargetService
	meals    *usecase.MealService
	recaps   *usecase.RecapService
	database Pinger
}

// NewHandler creates a new HTTP handler
func NewHandler(s Services) *Handler {
	return &Handler{
		profiles: s.Profiles,
		targets:  s.Targets,
		meals:    s.Meals,
		recaps:   s.Recaps,
		database: s.Database,
	}
}

// apiError writes the {"error": "..."} body
func apiError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondError maps domain errors onto HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidTimezone):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrMealNotFound),
		errors.Is(err, domain.ErrCacheMiss):
		apiError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTargetUndetermined):
		apiError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrExtractionUnavailable):
		apiError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrExtractionFailed):
		apiError(c, http.StatusBadGateway, domain.ErrExtractionFailed.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		apiError(c, http.StatusGatewayTimeout, "request cancelled")
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		apiError(c, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "healthy",
		"service": "nutricoach-backend",
		"version": "1.0.0",
	}

	if h.database != nil {
		if err := h.database.Ping(c.Request.Context()); err != nil {
			logger.Warn("health check: database unreachable", zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}

	c.JSON(status, body)
}

type calculateRequest struct {
	Profile *domain.UserProfile `json:"profile"`
	Goal    *domain.UserGoal    `json:"goal"`
}

// CalculateTargets computes a target from a profile and goal in the body
func (h *Handler) CalculateTargets(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	breakdown, err := h.targets.Calculate(req.Profile, req.Goal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// GetProfile returns the stored profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PatchProfile merges the body into the stored profile
func (h *Handler) PatchProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), c.Param("userID"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetGoal returns the stored goal
func (h *Handler) GetGoal(c *gin.Context) {
	goal, err := h.profiles.GetGoal(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// PatchGoal merges the body into the stored goal
func (h *Handler) PatchGoal(c *gin.Context) {
	var patch domain.GoalPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.profiles.UpdateGoal(c.Request.Context(), c.Param("userID"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

// GetTargets returns the target derived from the stored profile and goal
func (h *Handler) GetTargets(c *gin.Context) {
	breakdown, err := h.targets.UserTargets(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

// ListMeals returns the meals of ?date= (default today)
func (h *Handler) ListMeals(c *gin.Context) {
	meals, err := h.meals.ListMeals(c.Request.Context(), c.Param("userID"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// CreateMeal logs a meal
func (h *Handler) CreateMeal(c *gin.Context) {
	var req usecase.LogMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.meals.LogMeal(c.Request.Context(), c.Param("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DeleteMeal removes a meal
func (h *Handler) DeleteMeal(c *gin.Context) {
	if err := h.meals.DeleteMeal(c.Request.Context(), c.Param("userID"), c.Param("mealID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type extractRequest struct {
	Text       string `json:"text"`
	Transcript string `json:"transcript"`
	Image      string `json:"image"` // base64, optionally as a data URL
	MimeType   string `json:"mimeType"`
}

// ExtractMeal estimates a meal from text, a transcript or a photo
func (h *Handler) ExtractMeal(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	image, mimeType, err := decodeImage(req.Image, req.MimeType)
	if err != nil {
		apiError(c, http.StatusBadRequest, "image must be base64 encoded")
		return
	}

	result, err := h.meals.ExtractMeal(c.Request.Context(), usecase.ExtractRequest{
		Text:       req.Text,
		Transcript: req.Transcript,
		Image:      image,
		MimeType:   mimeType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// decodeImage accepts plain base64 or a "data:<mime>;base64,<data>" URL
func decodeImage(encoded, mimeType string) ([]byte, string, error) {
	if encoded == "" {
		return nil, mimeType, nil
	}
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", errors.New("malformed data URL")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(header, ";base64")
		}
		encoded = data
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", err
	}
	return image, mimeType, nil
}

// GetDaily returns the totals of ?date= (default today)
func (h *Handler) GetDaily(c *gin.Context) {
	summary, err := h.meals.DailyTotal(c.Request.Context(), c.Param("userID"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetRecap returns the recap of ?start=&end= (default: period ending yesterday)
func (h *Handler) GetRecap(c *gin.Context) {
	recap, err := h.recaps.Recap(c.Request.Context(), c.Param("userID"), c.Query("start"), c.Query("end"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recap)
}

// GetLatestRecap returns the recap last stored by the batch job
func (h *Handler) GetLatestRecap(c *gin.Context) {
	cached, err := h.recaps.LatestRecap(c.Request.Context(), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cached)
}
