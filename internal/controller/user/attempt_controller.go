package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(as service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: as}
}

// GetAttempt godoc
// @Summary (User) Get an attempt
// @Description Returns the attempt with its test, questions and responses in position order.
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.TestAttemptDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attempt, err := c.attemptService.GetAttempt(ctx.Request.Context(), ctx.Param("attempt_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve attempt", err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// UpdateResponse godoc
// @Summary (User) Update one question response
// @Description Partial update. selected_option_id sets or (with null) clears the answer and counts as a switch when it changes. time_spent and switch_count are added to the stored values.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param question_id path string true "Question ID"
// @Param response body dto.UpdateResponseDTO true "Changes"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt, response or option not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is no longer in progress"
// @Router /attempts/{attempt_id}/responses/{question_id} [patch]
func (c *AttemptController) UpdateResponse(ctx *gin.Context) {
	var req dto.UpdateResponseDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	patch := service.ResponsePatch{
		SetSelection:     req.SelectedOptionID.Set,
		SelectedOptionID: req.SelectedOptionID.Value,
		TimeSpent:        req.TimeSpent,
		SwitchCount:      req.SwitchCount,
		Flagged:          req.Flagged,
	}
	response, err := c.attemptService.UpdateResponse(ctx.Request.Context(), ctx.Param("attempt_id"), ctx.Param("question_id"), patch)
	if err != nil {
		controller.RespondError(ctx, "Failed to update response", err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// ListResponses godoc
// @Summary (User) List the responses of an attempt
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/responses [get]
func (c *AttemptController) ListResponses(ctx *gin.Context) {
	responses, err := c.attemptService.ListAttemptResponses(ctx.Request.Context(), ctx.Param("attempt_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve responses", err)
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// GetResponse godoc
// @Summary (User) Get one response of an attempt
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/responses/{question_id} [get]
func (c *AttemptController) GetResponse(ctx *gin.Context) {
	response, err := c.attemptService.GetResponse(ctx.Request.Context(), ctx.Param("attempt_id"), ctx.Param("question_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve response", err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// FinishAttempt godoc
// @Summary (User) Finish and grade an attempt
// @Description Grades every response and stores the percentage score. Finishing a completed attempt returns the stored result.
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.TestAttemptDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Attempt was abandoned"
// @Router /attempts/{attempt_id}/finish [post]
func (c *AttemptController) FinishAttempt(ctx *gin.Context) {
	attempt, err := c.attemptService.FinishAttempt(ctx.Request.Context(), ctx.Param("attempt_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to finish attempt", err)
		return
	}
	ctx.JSON(http.StatusOK, attempt)
}

// ListUserAttempts godoc
// @Summary (User) List a user's attempts
// @Tags User - Attempts
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {array} dto.TestAttemptSummaryDTO
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{user_id}/attempts [get]
func (c *AttemptController) ListUserAttempts(ctx *gin.Context) {
	attempts, err := c.attemptService.ListUserAttempts(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve attempts", err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}
