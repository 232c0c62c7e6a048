package controller

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/rs/zerolog/log"
)

// Paging and sorting parameters; every other query parameter is a filter.
var listParams = []string{"skip", "take", "order_by"}

// ParseListQuery splits the query string into field filters and paging options.
func ParseListQuery(ctx *gin.Context) (map[string]interface{}, repository.QueryOptions, error) {
	var page dto.PageQuery
	if err := ctx.ShouldBindQuery(&page); err != nil {
		return nil, repository.QueryOptions{}, err
	}
	filters := repository.ParseQueryFilters(ctx.Request.URL.Query(), listParams...)
	return filters, repository.QueryOptions{Skip: page.Skip, Take: page.Take, SortBy: page.SortBy}, nil
}

// StatusFor maps a service or repository error to its HTTP status.
func StatusFor(err error) int {
	var validationErr *service.ValidationError
	switch {
	case repository.IsNotFound(err):
		return http.StatusNotFound
	case repository.IsUniqueConstraint(err), errors.Is(err, service.ErrAttemptClosed):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrExplanationUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// RespondError writes err as a dto.ErrorResponse. Internal failures are logged
// and their detail is not exposed.
func RespondError(ctx *gin.Context, msg string, err error) {
	status := StatusFor(err)
	resp := dto.ErrorResponse{Message: msg}
	var validationErr *service.ValidationError
	switch {
	case status == http.StatusInternalServerError:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg(msg)
	case errors.As(err, &validationErr):
		resp.Details = sortedDetails(validationErr.Fields)
	default:
		resp.Details = []string{err.Error()}
	}
	ctx.JSON(status, resp)
}

// RespondBindError reports a malformed request body or query.
func RespondBindError(ctx *gin.Context, err error) {
	resp := dto.ErrorResponse{Message: "Invalid request"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describeFieldError(fe)
		}
		resp.Details = sortedDetails(fields)
	} else {
		resp.Details = []string{err.Error()}
	}
	ctx.JSON(http.StatusBadRequest, resp)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "max":
		return fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param())
	}
	return "must be a valid " + fe.Tag()
}

func sortedDetails(fields map[string]string) []string {
	out := make([]string, 0, len(fields))
	for f, msg := range fields {
		out = append(out, f+": "+msg)
	}
	sort.Strings(out)
	return out
}
