package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillpath/backend/internal/platform/apierr"
)

// Envelope is the wire shape of every response: {success, data?} on success,
// {success:false, error} on failure. List responses also carry a count.
type Envelope struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func RespondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: payload})
}

func RespondCreated(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: payload})
}

func RespondList(c *gin.Context, payload interface{}, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: payload})
}

// RespondError maps the error to its apierr status (500 when untyped).
func RespondError(c *gin.Context, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	status := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.JSON(status, Envelope{Success: false, Error: msg})
}

// RespondErrorStatus is for transport-level failures that never reach a
// service (malformed ids, unparseable bodies).
func RespondErrorStatus(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{Success: false, Error: msg})
}
