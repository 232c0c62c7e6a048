package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	testService     service.TestService
	questionService service.QuestionService
	attemptService  service.AttemptService
}

func NewAdminTestController(ts service.TestService, qs service.QuestionService, as service.AttemptService) *AdminTestController {
	return &AdminTestController{testService: ts, questionService: qs, attemptService: as}
}

// CreateTest godoc
// @Summary (Admin) Create a new test
// @Description Creates a test, optionally linking existing questions by id.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test body dto.TestCreateDTO true "Test"
// @Success 201 {object} dto.TestDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 409 {object} dto.ErrorResponse "Name already used"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Admin CreateTest: Invalid request payload")
		controller.RespondBindError(ctx, err)
		return
	}
	test, err := c.testService.CreateTest(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create test", err)
		return
	}
	ctx.JSON(http.StatusCreated, test)
}

// TestCreationFilters godoc
// @Summary (Admin) Filter values available for building a test
// @Tags Admin - Tests
// @Produce json
// @Success 200 {object} dto.QuestionFiltersDTO
// @Router /admin/tests/filters [get]
func (c *AdminTestController) TestCreationFilters(ctx *gin.Context) {
	filters, err := c.questionService.AvailableFilters(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve filters", err)
		return
	}
	ctx.JSON(http.StatusOK, filters)
}

// PreviewTestQuestions godoc
// @Summary (Admin) Preview the questions matching test filters
// @Description Questions in title order, as a test created from the same filters would hold them.
// @Tags Admin - Tests
// @Produce json
// @Param section query string false "Section code"
// @Param course query string false "Course code"
// @Param type query string false "Question type"
// @Param period query string false "Period"
// @Success 200 {array} dto.QuestionDTO
// @Router /admin/tests/questions [get]
func (c *AdminTestController) PreviewTestQuestions(ctx *gin.Context) {
	var query dto.QuestionSetQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	questions, err := c.testService.PreviewTestQuestions(ctx.Request.Context(), query)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve questions", err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// CreateTestFromFilters godoc
// @Summary (Admin) Create a test from question filters
// @Description Links every question matching the section, course, type and period filters.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test body dto.TestFromFiltersDTO true "Name and filters"
// @Success 201 {object} dto.TestDTO
// @Failure 400 {object} dto.ErrorResponse "No question matches"
// @Failure 409 {object} dto.ErrorResponse "Name already used"
// @Router /admin/tests/from-filters [post]
func (c *AdminTestController) CreateTestFromFilters(ctx *gin.Context) {
	var req dto.TestFromFiltersDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("Admin CreateTestFromFilters: Invalid request payload")
		controller.RespondBindError(ctx, err)
		return
	}
	test, err := c.testService.CreateTestFromFilters(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create test", err)
		return
	}
	ctx.JSON(http.StatusCreated, test)
}

// RenameTest godoc
// @Summary (Admin) Rename a test
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param test body dto.TestUpdateDTO true "New name"
// @Success 200 {object} dto.TestDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/tests/{id} [patch]
func (c *AdminTestController) RenameTest(ctx *gin.Context) {
	var req dto.TestUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	test, err := c.testService.RenameTest(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to rename test", err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// DeleteTest godoc
// @Summary (Admin) Delete a test
// @Tags Admin - Tests
// @Param id path string true "Test ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/tests/{id} [delete]
func (c *AdminTestController) DeleteTest(ctx *gin.Context) {
	if err := c.testService.DeleteTest(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete test", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddQuestions godoc
// @Summary (Admin) Add questions to a test
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param questions body dto.TestQuestionsDTO true "Question ids"
// @Success 200 {object} dto.TestDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/tests/{id}/questions [post]
func (c *AdminTestController) AddQuestions(ctx *gin.Context) {
	var req dto.TestQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	test, err := c.testService.AddQuestions(ctx.Request.Context(), ctx.Param("id"), req.QuestionIDs)
	if err != nil {
		controller.RespondError(ctx, "Failed to add questions", err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// RemoveQuestions godoc
// @Summary (Admin) Remove questions from a test
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param questions body dto.TestQuestionsDTO true "Question ids"
// @Success 200 {object} dto.TestDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/tests/{id}/questions [delete]
func (c *AdminTestController) RemoveQuestions(ctx *gin.Context) {
	var req dto.TestQuestionsDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	test, err := c.testService.RemoveQuestions(ctx.Request.Context(), ctx.Param("id"), req.QuestionIDs)
	if err != nil {
		controller.RespondError(ctx, "Failed to remove questions", err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// ListAttempts godoc
// @Summary (Admin) List attempts
// @Description Field filters as query parameters, e.g. status__in=COMPLETED, test_id__in=..., started_at__gte=2024-01-01.
// @Tags Admin - Attempts
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return"
// @Param order_by query string false "Sort field, prefix with - for descending"
// @Success 200 {array} dto.TestAttemptSummaryDTO
// @Router /admin/attempts [get]
func (c *AdminTestController) ListAttempts(ctx *gin.Context) {
	filters, opts, err := controller.ParseListQuery(ctx)
	if err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	attempts, err := c.attemptService.ListAttempts(ctx.Request.Context(), filters, opts)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve attempts", err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}
