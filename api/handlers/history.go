package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/session"
)

type HistoryResponse struct {
	Queries []string `json:"queries"`
}

func SetupHistory(router *gin.Engine, logger logger.Logger, sess *session.Session) {
	router.GET("/history", handleHistory(sess, logger))
}

func handleHistory(sess *session.Session, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		queries, err := sess.History()
		if err != nil {
			logger.Error("could not read search history", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"failed to read search history"})
			return
		}

		writeResponse(c, HistoryResponse{Queries: queries}, http.StatusOK, nil)
	}
}
