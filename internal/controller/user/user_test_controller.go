package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/rs/zerolog/log"
)

type UserTestController struct {
	testService    service.TestService
	attemptService service.AttemptService
}

func NewUserTestController(ts service.TestService, as service.AttemptService) *UserTestController {
	return &UserTestController{testService: ts, attemptService: as}
}

// GetAllTests godoc
// @Summary (User) List all available tests
// @Description Lists tests with their question and attempt counts. Any query parameter other than skip, take and order_by filters by field (name=foo, created_at__gte=...).
// @Tags User - Tests
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param take query int false "Rows to return"
// @Param order_by query string false "Sort field, prefix with - for descending"
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tests [get]
func (c *UserTestController) GetAllTests(ctx *gin.Context) {
	filters, opts, err := controller.ParseListQuery(ctx)
	if err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	tests, err := c.testService.ListTests(ctx.Request.Context(), filters, opts)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve tests", err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetails godoc
// @Summary (User) Get a test with its questions
// @Tags User - Tests
// @Produce json
// @Param test_id path string true "Test ID"
// @Success 200 {object} dto.TestDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tests/{test_id} [get]
func (c *UserTestController) GetTestDetails(ctx *gin.Context) {
	test, err := c.testService.GetTestDetails(ctx.Request.Context(), ctx.Param("test_id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve test", err)
		return
	}
	ctx.JSON(http.StatusOK, test)
}

// StartAttempt godoc
// @Summary (User) Start a practice attempt
// @Description Creates an in-progress attempt with one blank response per question of the test.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param test_id path string true "Test ID"
// @Param attempt body dto.StartAttemptDTO true "Attempting user"
// @Success 201 {object} dto.TestAttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "User, test or questions not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tests/{test_id}/attempts [post]
func (c *UserTestController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	testID := ctx.Param("test_id")
	log.Info().Str("testID", testID).Str("userID", req.UserID).Msg("User StartAttempt")
	attempt, err := c.attemptService.StartAttempt(ctx.Request.Context(), req.UserID, testID)
	if err != nil {
		controller.RespondError(ctx, "Failed to start attempt", err)
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}
