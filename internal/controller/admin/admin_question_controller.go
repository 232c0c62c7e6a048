package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminQuestionController struct {
	questionService service.QuestionService
	optionService   service.OptionService
}

func NewAdminQuestionController(qs service.QuestionService, os service.OptionService) *AdminQuestionController {
	return &AdminQuestionController{questionService: qs, optionService: os}
}

// ListQuestions godoc
// @Summary (Admin) List questions
// @Tags Admin - Questions
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return"
// @Param order_by query string false "Sort field, prefix with - for descending"
// @Success 200 {array} dto.QuestionDTO
// @Router /admin/questions [get]
func (c *AdminQuestionController) ListQuestions(ctx *gin.Context) {
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

// CreateQuestion godoc
// @Summary (Admin) Create a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question body dto.QuestionCreateDTO true "Question"
// @Success 201 {object} dto.QuestionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Unique code already used"
// @Router /admin/questions [post]
func (c *AdminQuestionController) CreateQuestion(ctx *gin.Context) {
	var req dto.QuestionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	question, err := c.questionService.CreateQuestion(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create question", err)
		return
	}
	log.Info().Str("questionID", question.ID).Msg("Admin CreateQuestion")
	ctx.JSON(http.StatusCreated, question)
}

// GetQuestion godoc
// @Summary (Admin) Get a question
// @Tags Admin - Questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.QuestionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [get]
func (c *AdminQuestionController) GetQuestion(ctx *gin.Context) {
	question, err := c.questionService.GetQuestion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve question", err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// GetQuestionByCode godoc
// @Summary (Admin) Get a question by unique code
// @Tags Admin - Questions
// @Produce json
// @Param code path string true "Unique code"
// @Success 200 {object} dto.QuestionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/question-codes/{code} [get]
func (c *AdminQuestionController) GetQuestionByCode(ctx *gin.Context) {
	question, err := c.questionService.GetQuestionByCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve question", err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param question body dto.QuestionUpdateDTO true "Fields to change"
// @Success 200 {object} dto.QuestionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [patch]
func (c *AdminQuestionController) UpdateQuestion(ctx *gin.Context) {
	var req dto.QuestionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	question, err := c.questionService.UpdateQuestion(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to update question", err)
		return
	}
	ctx.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Description Soft delete; past responses keep their question.
// @Tags Admin - Questions
// @Param id path string true "Question ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/questions/{id} [delete]
func (c *AdminQuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete question", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListOptions godoc
// @Summary (Admin) List the options of a question
// @Tags Admin - Options
// @Produce json
// @Param code path string true "Question unique code"
// @Success 200 {array} dto.OptionDTO
// @Router /admin/question-codes/{code}/options [get]
func (c *AdminQuestionController) ListOptions(ctx *gin.Context) {
	options, err := c.optionService.ListByQuestionCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve options", err)
		return
	}
	ctx.JSON(http.StatusOK, options)
}

// CreateOption godoc
// @Summary (Admin) Create an option
// @Tags Admin - Options
// @Accept json
// @Produce json
// @Param option body dto.OptionCreateDTO true "Option"
// @Success 201 {object} dto.OptionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/options [post]
func (c *AdminQuestionController) CreateOption(ctx *gin.Context) {
	var req dto.OptionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	option, err := c.optionService.CreateOption(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create option", err)
		return
	}
	ctx.JSON(http.StatusCreated, option)
}

// GetOption godoc
// @Summary (Admin) Get an option
// @Tags Admin - Options
// @Produce json
// @Param id path string true "Option ID"
// @Success 200 {object} dto.OptionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/options/{id} [get]
func (c *AdminQuestionController) GetOption(ctx *gin.Context) {
	option, err := c.optionService.GetOption(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve option", err)
		return
	}
	ctx.JSON(http.StatusOK, option)
}

// UpdateOption godoc
// @Summary (Admin) Update an option
// @Tags Admin - Options
// @Accept json
// @Produce json
// @Param id path string true "Option ID"
// @Param option body dto.OptionUpdateDTO true "Fields to change"
// @Success 200 {object} dto.OptionDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/options/{id} [patch]
func (c *AdminQuestionController) UpdateOption(ctx *gin.Context) {
	var req dto.OptionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	option, err := c.optionService.UpdateOption(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to update option", err)
		return
	}
	ctx.JSON(http.StatusOK, option)
}

// DeleteOption godoc
// @Summary (Admin) Delete an option
// @Tags Admin - Options
// @Param id path string true "Option ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/options/{id} [delete]
func (c *AdminQuestionController) DeleteOption(ctx *gin.Context) {
	if err := c.optionService.DeleteOption(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete option", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
