package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uatas-cs/complaint-service/internal/errs"
)

// respondErr maps service errors onto HTTP statuses: validation 400,
// not-found 404, duplicates/self-delete 409, forbidden 403, the rest 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrTicketNotFound),
		errors.Is(err, errs.ErrGroupNotFound),
		errors.Is(err, errs.ErrUserNotFound),
		errors.Is(err, errs.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUsernameTaken),
		errors.Is(err, errs.ErrEmailTaken),
		errors.Is(err, errs.ErrSelfDelete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrImportBadColumns):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
