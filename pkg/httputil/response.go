package httputil

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// RespondWithError sends an error response. AppErrors keep their message and
// status; anything else is logged and hidden behind a 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		}
		c.JSON(status, NewErrorResponse(appErr.Message))
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// Abort is RespondWithError for middleware.
func Abort(c *gin.Context, err error) {
	RespondWithError(c, err)
	c.Abort()
}

// RespondWithValidationError sends a 400 listing the failed fields. Errors
// that are not validation errors (malformed JSON) get a generic message.
func RespondWithValidationError(c *gin.Context, err error) {
	var fields []validator.FieldError
	if errs, ok := err.(binding.SliceValidationError); ok {
		for _, e := range errs {
			fields = append(fields, validator.Fields(e)...)
		}
	} else {
		fields = validator.Fields(err)
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
		return
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + " " + f.Message
	}
	c.JSON(http.StatusBadRequest, &Response{
		Status:  "error",
		Message: strings.Join(parts, "; "),
		Data:    gin.H{"fields": fields},
	})
}
