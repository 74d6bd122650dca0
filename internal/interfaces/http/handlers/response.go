package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// respondError renders err with the status its code maps to. Errors that
// carry no code are logged through gin and reported as internal.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperror.As(err)
	if !ok || appErr.Code() == apperror.CodeInternal {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": apperror.MetadataFor(apperror.CodeInternal).PublicMessage,
			"code":  apperror.CodeInternal,
		})
		return
	}

	body := gin.H{
		"error": appErr.Message(),
		"code":  appErr.Code(),
	}
	if kind := appErr.Kind(); kind != "" {
		body["kind"] = kind
	}
	c.AbortWithStatusJSON(apperror.MetadataFor(appErr.Code()).HTTPStatus, body)
}

func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    apperror.CodeValidation,
		"details": err.Error(),
	})
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// parseIDParam reads a positive numeric path parameter, answering 400 itself
// when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
			"code":  apperror.CodeValidation,
		})
		return 0, false
	}
	return uint(id), true
}
