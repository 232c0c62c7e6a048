package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
)

type QuestionController struct {
	questionService    service.QuestionService
	explanationService service.ExplanationService
	catalogService     service.CatalogService
}

func NewQuestionController(qs service.QuestionService, es service.ExplanationService, cs service.CatalogService) *QuestionController {
	return &QuestionController{questionService: qs, explanationService: es, catalogService: cs}
}

// ListQuestions godoc
// @Summary (User) Browse the question bank
// @Description Every query parameter other than skip, take and order_by is a field filter. Plain text values match case-insensitively as substrings; use field__op (lt, lte, gt, gte, contains, startsWith, endsWith, in, notIn, not) for operators.
// @Tags User - Questions
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return"
// @Param order_by query string false "Sort field, prefix with - for descending"
// @Success 200 {array} dto.QuestionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	filters, opts, err := controller.ParseListQuery(ctx)
	if err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	questions, err := c.questionService.ListQuestions(ctx.Request.Context(), filters, opts)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve questions", err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// QuestionSets godoc
// @Summary (User) Questions grouped by section, course, type and period
// @Tags User - Questions
// @Produce json
// @Param section query string false "Section code"
// @Param course query string false "Course code"
// @Param type query string false "Question type"
// @Param period query string false "Period"
// @Success 200 {array} dto.QuestionSetDTO
// @Router /questions/sets [get]
func (c *QuestionController) QuestionSets(ctx *gin.Context) {
	var query dto.QuestionSetQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	sets, err := c.questionService.QuestionSets(ctx.Request.Context(), query)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve question sets", err)
		return
	}
	ctx.JSON(http.StatusOK, sets)
}

// QuestionFilters godoc
// @Summary (User) Distinct filter values of the question bank
// @Tags User - Questions
// @Produce json
// @Success 200 {object} dto.QuestionFiltersDTO
// @Router /questions/filters [get]
func (c *QuestionController) QuestionFilters(ctx *gin.Context) {
	filters, err := c.questionService.AvailableFilters(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve question filters", err)
		return
	}
	ctx.JSON(http.StatusOK, filters)
}

// ExplainQuestion godoc
// @Summary (User) Explain a question
// @Description Returns the authored solution, or an AI explanation generated once and cached.
// @Tags User - Questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.QuestionExplanationDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "No explanation source configured"
// @Router /questions/{id}/explanation [get]
func (c *QuestionController) ExplainQuestion(ctx *gin.Context) {
	explanation, err := c.explanationService.ExplainQuestion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to explain question", err)
		return
	}
	ctx.JSON(http.StatusOK, explanation)
}

// ListSections godoc
// @Summary (User) List sections with their courses
// @Tags User - Questions
// @Produce json
// @Success 200 {array} dto.SectionDTO
// @Router /sections [get]
func (c *QuestionController) ListSections(ctx *gin.Context) {
	sections, err := c.catalogService.ListSections(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve sections", err)
		return
	}
	ctx.JSON(http.StatusOK, sections)
}
