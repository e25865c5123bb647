package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AyanAhmedKhan/scholar/pdfmerge"
	"github.com/AyanAhmedKhan/scholar/services"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Document validation failed",
			"failures": verr.Reasons,
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyApplied),
		errors.Is(err, services.ErrMutualExclusion),
		errors.Is(err, services.ErrRenewalPending),
		errors.Is(err, services.ErrSwitchLimitExceeded),
		errors.Is(err, services.ErrInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotRenewable),
		errors.Is(err, services.ErrNoPriorApproval),
		errors.Is(err, services.ErrNoConflictFound),
		errors.Is(err, services.ErrInvalidFileType),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrPageLimitExceeded),
		errors.Is(err, pdfmerge.ErrNoDocumentsMerged):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func currentUser(c *gin.Context) (userID, roleID int) {
	return c.GetInt("userID"), c.GetInt("roleID")
}
