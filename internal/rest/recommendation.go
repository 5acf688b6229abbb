package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"
	"aiImageStudio/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		recorder FeedbackRecorder
	}

	RecommendationService interface {
		Recommend(ctx context.Context, userID uint, rctx domain.RecommendationContext) ([]domain.Recommendation, error)
		Explain(ctx context.Context, userID uint, rctx domain.RecommendationContext) ([]domain.ScoreBreakdown, error)
	}

	FeedbackRecorder interface {
		RecordInteraction(ctx context.Context, event domain.InteractionEvent) error
	}

	RecommendQuery struct {
		N               int    `query:"n" validate:"gte=0"`
		Device          string `query:"device" validate:"omitempty,oneof=mobile tablet desktop"`
		CurrentCategory string `query:"category"`
		Exclude         string `query:"exclude"` // comma separated candidate ids
		SessionSeconds  int    `query:"session_seconds" validate:"gte=0,lte=86400"`
	}

	FeedbackRequest struct {
		CandidateID     uint64         `json:"candidate_id" validate:"required"`
		InteractionType string         `json:"interaction_type" validate:"required,oneof=view like bookmark generate share download"`
		EngagementLevel int            `json:"engagement_level" validate:"required,min=1,max=10"`
		Device          string         `json:"device" validate:"omitempty,oneof=mobile tablet desktop"`
		SessionSeconds  *float64       `json:"session_seconds" validate:"omitempty,gte=0,lte=86400"`
		OccurredAt      *time.Time     `json:"occurred_at"`
		Context         map[string]any `json:"context"`
	}
)

func NewRecommendationHandler(svc RecommendationService, recorder FeedbackRecorder) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
		recorder: recorder,
	}
}

// GET /api/v1/recommendations?n=10&device=mobile&category=Artistic&exclude=1,2
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	rctx, err := h.bindContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.service.Recommend(c.Request().Context(), userID, rctx)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/debug takes the same query as Recommend.
func (h *RecommendationHandler) Explain(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	rctx, err := h.bindContext(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	out, err := h.service.Explain(c.Request().Context(), userID, rctx)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(out))
}

// POST /api/v1/recommendations/feedback
func (h *RecommendationHandler) Feedback(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	event := domain.InteractionEvent{
		UserID:          userID,
		CandidateID:     req.CandidateID,
		InteractionType: domain.InteractionType(req.InteractionType),
		EngagementLevel: req.EngagementLevel,
		Device:          domain.DeviceClass(req.Device),
		OccurredAt:      time.Now(),
		Context:         req.Context,
	}
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		event.OccurredAt = *req.OccurredAt
	}
	if req.SessionSeconds != nil {
		d := time.Duration(*req.SessionSeconds * float64(time.Second))
		event.SessionDuration = &d
	}

	if err := h.recorder.RecordInteraction(c.Request().Context(), event); err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("feedback recorded"))
}

func (h *RecommendationHandler) bindContext(c echo.Context) (domain.RecommendationContext, error) {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return domain.RecommendationContext{}, err
	}
	if err := h.validate.Struct(&q); err != nil {
		return domain.RecommendationContext{}, err
	}

	exclude, err := parseIDList(q.Exclude)
	if err != nil {
		return domain.RecommendationContext{}, err
	}

	rctx := domain.RecommendationContext{
		Now:             time.Now(),
		Device:          domain.DeviceClass(q.Device),
		CurrentCategory: q.CurrentCategory,
		ExcludeIDs:      exclude,
		MaxResults:      q.N,
	}
	if q.SessionSeconds > 0 {
		d := time.Duration(q.SessionSeconds) * time.Second
		rctx.SessionDuration = &d
	}
	return rctx, nil
}

func (h *RecommendationHandler) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, recommend.ErrInvalidUserID), errors.Is(err, recommend.ErrInvalidInteraction):
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	case errors.Is(err, recommend.ErrCollaboratorUnavailable),
		errors.Is(err, recommend.ErrRecorderClosed),
		errors.Is(err, context.DeadlineExceeded):
		logger.Warn("recommend_unavailable",
			"trace_id", recommend.TraceIDFromContext(c.Request().Context()),
			"error", err,
		)
		return c.JSON(http.StatusServiceUnavailable, ResponseError{Message: "recommendations temporarily unavailable"})
	default:
		logger.Error("recommend_failed",
			"trace_id", recommend.TraceIDFromContext(c.Request().Context()),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: "internal error"})
	}
}

func parseIDList(raw string) ([]uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uint64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("exclude must be a comma separated list of positive ids")
		}
		out = append(out, id)
	}
	return out, nil
}
