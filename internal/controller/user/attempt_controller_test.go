package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAttemptService struct {
	service.AttemptService
	attemptID, questionID string
	patch                 service.ResponsePatch
	err                   error
}

func (s *recordingAttemptService) UpdateResponse(ctx context.Context, attemptID, questionID string, patch service.ResponsePatch) (*dto.QuestionResponseDTO, error) {
	s.attemptID, s.questionID, s.patch = attemptID, questionID, patch
	if s.err != nil {
		return nil, s.err
	}
	return &dto.QuestionResponseDTO{AttemptID: attemptID, QuestionID: questionID}, nil
}

func patchResponse(t *testing.T, svc service.AttemptService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PATCH("/attempts/:attempt_id/responses/:question_id", NewAttemptController(svc).UpdateResponse)
	req := httptest.NewRequest(http.MethodPatch, "/attempts/a1/responses/q1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateResponseDistinguishesNullFromAbsentSelection(t *testing.T) {
	svc := &recordingAttemptService{}

	w := patchResponse(t, svc, `{"time_spent": 5, "flagged": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1", svc.attemptID)
	assert.Equal(t, "q1", svc.questionID)
	assert.False(t, svc.patch.SetSelection)
	require.NotNil(t, svc.patch.TimeSpent)
	assert.Equal(t, 5, *svc.patch.TimeSpent)
	require.NotNil(t, svc.patch.Flagged)
	assert.True(t, *svc.patch.Flagged)

	w = patchResponse(t, svc, `{"selected_option_id": null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.patch.SetSelection)
	assert.Nil(t, svc.patch.SelectedOptionID)

	w = patchResponse(t, svc, `{"selected_option_id": "opt-B"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.patch.SetSelection)
	require.NotNil(t, svc.patch.SelectedOptionID)
	assert.Equal(t, "opt-B", *svc.patch.SelectedOptionID)
}

func TestUpdateResponsePassesNonPositiveDeltasThrough(t *testing.T) {
	svc := &recordingAttemptService{}

	w := patchResponse(t, svc, `{"time_spent": -1, "switch_count": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.patch.TimeSpent)
	assert.Equal(t, -1, *svc.patch.TimeSpent)
	require.NotNil(t, svc.patch.SwitchCount)
	assert.Zero(t, *svc.patch.SwitchCount)
}

func TestUpdateResponseRejectsMalformedBody(t *testing.T) {
	w := patchResponse(t, &recordingAttemptService{}, `{"time_spent": "ten"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateResponseClosedAttempt(t *testing.T) {
	w := patchResponse(t, &recordingAttemptService{err: service.ErrAttemptClosed}, `{"flagged": true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "no longer in progress")
}
