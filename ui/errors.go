package ui

import (
	stderrors "errors"
	"log"
	"net/http"

	"leadboard/app"
	"leadboard/domain/core"
	"leadboard/internal/errors"
	"leadboard/ui/middleware"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes and a JSON body
func respondError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, app.ErrNoData), core.IsDatasetAbsent(err), errors.GetCode(err) == errors.CodeFileNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "no data available"})
		return
	case stderrors.Is(err, core.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := errors.GetCode(err)
	switch code {
	case errors.CodeMissingColumns:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           err.Error(),
			"code":            code,
			"missing_columns": errors.GetDetails(err),
		})
	case errors.CodeParseError:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
	case errors.CodeInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": code})
	case errors.CodeTooLarge:
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error(), "code": code})
	case errors.CodeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": code})
	default:
		log.Printf("[ui] Request %s failed: %v", middleware.RequestIDFrom(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "request_id": middleware.RequestIDFrom(c)})
	}
}
