package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/internal/controller"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/service"
)

// AdminCatalogController manages sections, courses and users.
type AdminCatalogController struct {
	catalogService service.CatalogService
	userService    service.UserService
}

func NewAdminCatalogController(cs service.CatalogService, us service.UserService) *AdminCatalogController {
	return &AdminCatalogController{catalogService: cs, userService: us}
}

// CreateSection godoc
// @Summary (Admin) Create a section
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param section body dto.SectionCreateDTO true "Section"
// @Success 201 {object} dto.SectionDTO
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/sections [post]
func (c *AdminCatalogController) CreateSection(ctx *gin.Context) {
	var req dto.SectionCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	section, err := c.catalogService.CreateSection(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create section", err)
		return
	}
	ctx.JSON(http.StatusCreated, section)
}

// UpdateSection godoc
// @Summary (Admin) Update a section
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param section body dto.SectionUpdateDTO true "Fields to change"
// @Success 200 {object} dto.SectionDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/sections/{id} [patch]
func (c *AdminCatalogController) UpdateSection(ctx *gin.Context) {
	var req dto.SectionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	section, err := c.catalogService.UpdateSection(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to update section", err)
		return
	}
	ctx.JSON(http.StatusOK, section)
}

// DeleteSection godoc
// @Summary (Admin) Delete a section
// @Tags Admin - Catalog
// @Param id path string true "Section ID"
// @Success 204
// @Router /admin/sections/{id} [delete]
func (c *AdminCatalogController) DeleteSection(ctx *gin.Context) {
	if err := c.catalogService.DeleteSection(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete section", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListCourses godoc
// @Summary (Admin) List courses
// @Tags Admin - Catalog
// @Produce json
// @Success 200 {array} dto.CourseDTO
// @Router /admin/courses [get]
func (c *AdminCatalogController) ListCourses(ctx *gin.Context) {
	filters, opts, err := controller.ParseListQuery(ctx)
	if err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	courses, err := c.catalogService.ListCourses(ctx.Request.Context(), filters, opts)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve courses", err)
		return
	}
	ctx.JSON(http.StatusOK, courses)
}

// CreateCourse godoc
// @Summary (Admin) Create a course
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param course body dto.CourseCreateDTO true "Course"
// @Success 201 {object} dto.CourseDTO
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 409 {object} dto.ErrorResponse
// @Router /admin/courses [post]
func (c *AdminCatalogController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	course, err := c.catalogService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create course", err)
		return
	}
	ctx.JSON(http.StatusCreated, course)
}

// UpdateCourse godoc
// @Summary (Admin) Update a course
// @Tags Admin - Catalog
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param course body dto.CourseUpdateDTO true "Fields to change"
// @Success 200 {object} dto.CourseDTO
// @Router /admin/courses/{id} [patch]
func (c *AdminCatalogController) UpdateCourse(ctx *gin.Context) {
	var req dto.CourseUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	course, err := c.catalogService.UpdateCourse(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to update course", err)
		return
	}
	ctx.JSON(http.StatusOK, course)
}

// DeleteCourse godoc
// @Summary (Admin) Delete a course
// @Tags Admin - Catalog
// @Param id path string true "Course ID"
// @Success 204
// @Router /admin/courses/{id} [delete]
func (c *AdminCatalogController) DeleteCourse(ctx *gin.Context) {
	if err := c.catalogService.DeleteCourse(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete course", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListUsers godoc
// @Summary (Admin) List users
// @Tags Admin - Users
// @Produce json
// @Success 200 {array} dto.UserDTO
// @Router /admin/users [get]
func (c *AdminCatalogController) ListUsers(ctx *gin.Context) {
	filters, opts, err := controller.ParseListQuery(ctx)
	if err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	users, err := c.userService.ListUsers(ctx.Request.Context(), filters, opts)
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve users", err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary (Admin) Get a user
// @Tags Admin - Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [get]
func (c *AdminCatalogController) GetUser(ctx *gin.Context) {
	user, err := c.userService.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		controller.RespondError(ctx, "Failed to retrieve user", err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary (Admin) Create a user
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Param user body dto.UserCreateDTO true "User"
// @Success 201 {object} dto.UserDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already used"
// @Router /admin/users [post]
func (c *AdminCatalogController) CreateUser(ctx *gin.Context) {
	var req dto.UserCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to create user", err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}

// UpdateUser godoc
// @Summary (Admin) Update a user
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param user body dto.UserUpdateDTO true "Fields to change"
// @Success 200 {object} dto.UserDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [patch]
func (c *AdminCatalogController) UpdateUser(ctx *gin.Context) {
	var req dto.UserUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.RespondBindError(ctx, err)
		return
	}
	user, err := c.userService.UpdateUser(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		controller.RespondError(ctx, "Failed to update user", err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary (Admin) Delete a user
// @Tags Admin - Users
// @Param id path string true "User ID"
// @Success 204
// @Router /admin/users/{id} [delete]
func (c *AdminCatalogController) DeleteUser(ctx *gin.Context) {
	if err := c.userService.DeleteUser(ctx.Request.Context(), ctx.Param("id")); err != nil {
		controller.RespondError(ctx, "Failed to delete user", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
