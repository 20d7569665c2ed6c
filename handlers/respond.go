package handlers

import (
	"net/http"

	"meepleserver/apperr"

	"github.com/gin-gonic/gin"
)

// fail writes a typed core error as its HTTP status with a stable error
// string the client can message on.
func fail(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
