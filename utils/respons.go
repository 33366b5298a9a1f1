package utils

import (
	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RespondSuccess writes the {success:true, message} envelope.
func RespondSuccess(c *gin.Context, code int, message string) {
	c.JSON(code, JSONResponse{
		Success: true,
		Message: message,
	})
}

// RespondError writes the {success:false, error} envelope. Callers must
// only pass errors whose message is safe for the client; upstream detail
// belongs in the server log.
func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Success: false,
		Error:   err.Error(),
	})
}
