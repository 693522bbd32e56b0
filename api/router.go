package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/api/handlers"
	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/session"
	"github.com/meghashyamc/docsearch/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, cfg *config.Config, sess *session.Session, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupDocuments(router, logger, sess, validator)
	handlers.SetupSearch(router, logger, sess, validator, cfg.GetDefaultContextChars())
	handlers.SetupHistory(router, logger, sess)
	handlers.SetupAnalytics(router, logger, sess)

	if cfg.IsDebug() {
		handlers.SetupDebug(router, sess)
	}
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
