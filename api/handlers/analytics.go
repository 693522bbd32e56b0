package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/analytics"
	"github.com/meghashyamc/docsearch/session"
)

func SetupAnalytics(router *gin.Engine, logger logger.Logger, sess *session.Session) {
	service := analytics.New(logger)
	router.GET("/analytics", handleAnalytics(service, sess))
}

func handleAnalytics(service *analytics.Service, sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeResponse(c, service.Summarize(sess.Documents()), http.StatusOK, nil)
	}
}
