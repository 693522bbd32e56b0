package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/session"
)

type DebugResponse struct {
	SessionID  string `json:"session_id"`
	Documents  int    `json:"documents"`
	TotalChars int    `json:"total_chars"`
}

// SetupDebug registers the debug panel. Callers only do so when debug is
// enabled in configuration.
func SetupDebug(router *gin.Engine, sess *session.Session) {
	router.GET("/debug", handleDebug(sess))
}

func handleDebug(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs := sess.Documents()
		debugResponse := DebugResponse{
			SessionID: sess.ID(),
			Documents: len(docs),
		}
		for _, doc := range docs {
			debugResponse.TotalChars += doc.Metrics.Chars
		}

		writeResponse(c, debugResponse, http.StatusOK, nil)
	}
}
