package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecommendationService struct {
	lastUser uint
	lastCtx  domain.RecommendationContext
	recs     []domain.Recommendation
	err      error
}

func (f *fakeRecommendationService) Recommend(ctx context.Context, userID uint, rctx domain.RecommendationContext) ([]domain.Recommendation, error) {
	f.lastUser, f.lastCtx = userID, rctx
	return f.recs, f.err
}

func (f *fakeRecommendationService) Explain(ctx context.Context, userID uint, rctx domain.RecommendationContext) ([]domain.ScoreBreakdown, error) {
	f.lastUser, f.lastCtx = userID, rctx
	if f.err != nil {
		return nil, f.err
	}
	return []domain.ScoreBreakdown{{CandidateID: 7, Score: 12, Discarded: true}}, nil
}

type fakeRecorder struct {
	events []domain.InteractionEvent
	err    error
}

func (f *fakeRecorder) RecordInteraction(ctx context.Context, event domain.InteractionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func newRecommendationEcho(h *RecommendationHandler, userID uint) *echo.Echo {
	e := echo.New()
	setUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != 0 {
				c.Set("user_id", userID)
			}
			return next(c)
		}
	}
	g := e.Group("/api/v1/recommendations", setUser)
	g.GET("", h.Recommend)
	g.GET("/debug", h.Explain)
	g.POST("/feedback", h.Feedback)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecommend_BindsContext(t *testing.T) {
	svc := &fakeRecommendationService{recs: []domain.Recommendation{{
		Candidate: domain.Candidate{ID: 2, Name: "Flash Render"},
		Score:     76.45,
		Category:  domain.CategoryQualityUpgrade,
	}}}
	e := newRecommendationEcho(NewRecommendationHandler(svc, &fakeRecorder{}), 42)

	rec := do(e, http.MethodGet, "/api/v1/recommendations?n=5&device=mobile&category=Artistic&exclude=3,4&session_seconds=90", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Flash Render")

	assert.Equal(t, uint(42), svc.lastUser)
	assert.Equal(t, 5, svc.lastCtx.MaxResults)
	assert.Equal(t, domain.DeviceMobile, svc.lastCtx.Device)
	assert.Equal(t, "Artistic", svc.lastCtx.CurrentCategory)
	assert.Equal(t, []uint64{3, 4}, svc.lastCtx.ExcludeIDs)
	require.NotNil(t, svc.lastCtx.SessionDuration)
	assert.Equal(t, 90.0, svc.lastCtx.SessionDuration.Seconds())
	assert.False(t, svc.lastCtx.Now.IsZero())
}

func TestRecommend_RejectsBadQuery(t *testing.T) {
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, &fakeRecorder{}), 42)

	for _, q := range []string{"device=fridge", "exclude=1,x", "n=-1", "n=abc"} {
		rec := do(e, http.MethodGet, "/api/v1/recommendations?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestRecommend_Unauthorized(t *testing.T) {
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, &fakeRecorder{}), 0)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/api/v1/recommendations", "").Code)
}

func TestRecommend_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{recommend.ErrInvalidUserID, http.StatusBadRequest},
		{fmt.Errorf("%w: load profile: %w", recommend.ErrCollaboratorUnavailable, errors.New("timeout")), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := &fakeRecommendationService{err: tt.err}
		e := newRecommendationEcho(NewRecommendationHandler(svc, &fakeRecorder{}), 42)
		assert.Equal(t, tt.code, do(e, http.MethodGet, "/api/v1/recommendations", "").Code, tt.err.Error())
	}
}

func TestExplain(t *testing.T) {
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, &fakeRecorder{}), 42)
	rec := do(e, http.MethodGet, "/api/v1/recommendations/debug", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"discarded":true`)
}

func TestFeedback_Accepted(t *testing.T) {
	recorder := &fakeRecorder{}
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, recorder), 42)

	rec := do(e, http.MethodPost, "/api/v1/recommendations/feedback",
		`{"candidate_id":7,"interaction_type":"like","engagement_level":8,"device":"tablet","session_seconds":30.5,"context":{"surface":"home"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, recorder.events, 1)
	ev := recorder.events[0]
	assert.Equal(t, uint(42), ev.UserID)
	assert.Equal(t, uint64(7), ev.CandidateID)
	assert.Equal(t, domain.InteractionLike, ev.InteractionType)
	assert.Equal(t, 8, ev.EngagementLevel)
	assert.Equal(t, domain.DeviceTablet, ev.Device)
	require.NotNil(t, ev.SessionDuration)
	assert.InDelta(t, 30.5, ev.SessionDuration.Seconds(), 1e-9)
	assert.Equal(t, "home", ev.Context["surface"])
}

func TestFeedback_Rejected(t *testing.T) {
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, &fakeRecorder{}), 42)

	bodies := []string{
		`{"interaction_type":"like","engagement_level":5}`,
		`{"candidate_id":7,"interaction_type":"poke","engagement_level":5}`,
		`{"candidate_id":7,"interaction_type":"like","engagement_level":11}`,
		`{"candidate_id":7,"interaction_type":"like"}`,
		`{"candidate_id":7,"interaction_type":"like","engagement_level":5,"session_seconds":-1}`,
		`not json`,
	}
	for _, b := range bodies {
		assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/v1/recommendations/feedback", b).Code, b)
	}
}

func TestFeedback_SessionLengthIsBounded(t *testing.T) {
	recorder := &fakeRecorder{}
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, recorder), 42)

	for _, secs := range []string{"86401", "1e12", "9.3e18"} {
		body := `{"candidate_id":7,"interaction_type":"like","engagement_level":5,"session_seconds":` + secs + `}`
		assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/v1/recommendations/feedback", body).Code, secs)
	}
	assert.Empty(t, recorder.events)

	rec := do(e, http.MethodPost, "/api/v1/recommendations/feedback",
		`{"candidate_id":7,"interaction_type":"like","engagement_level":5,"session_seconds":86400}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, recorder.events, 1)
	assert.Equal(t, 24*time.Hour, *recorder.events[0].SessionDuration)
}

func TestRecommend_SessionLengthIsBounded(t *testing.T) {
	svc := &fakeRecommendationService{}
	e := newRecommendationEcho(NewRecommendationHandler(svc, &fakeRecorder{}), 42)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/v1/recommendations?session_seconds=86401", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/v1/recommendations?session_seconds=9999999999999", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/v1/recommendations?session_seconds=86400", "").Code)
}

func TestFeedback_RecorderClosed(t *testing.T) {
	e := newRecommendationEcho(NewRecommendationHandler(&fakeRecommendationService{}, &fakeRecorder{err: recommend.ErrRecorderClosed}), 42)
	rec := do(e, http.MethodPost, "/api/v1/recommendations/feedback", `{"candidate_id":7,"interaction_type":"view","engagement_level":1}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList(" 1, 2,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	ids, err = parseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDList("0")
	assert.Error(t, err)
}
