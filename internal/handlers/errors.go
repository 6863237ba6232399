package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/logger"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrUserExists, http.StatusBadRequest},
	{services.ErrSelfFollow, http.StatusBadRequest},
	{services.ErrInvalidReaction, http.StatusBadRequest},
	{services.ErrEmptyUpload, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{services.ErrNotAuthor, http.StatusForbidden},
	{services.ErrCommentsDisabled, http.StatusForbidden},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrPostNotFound, http.StatusNotFound},
	{services.ErrReelNotFound, http.StatusNotFound},
}

// respondError writes err as {detail}. Unknown errors are logged and hidden
// behind a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"detail": e.err.Error()})
			return
		}
	}

	log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": bindingDetail(err)})
}

// list keeps empty results encoding as [] rather than null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
