package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/export"
	"github.com/meghashyamc/docsearch/services/search"
	"github.com/meghashyamc/docsearch/session"
	"github.com/meghashyamc/docsearch/validation"
)

const reportContentType = "text/plain; charset=utf-8"

type SearchRequest struct {
	Query         string   `json:"query" validate:"valid_query"`
	CaseSensitive bool     `json:"case_sensitive"`
	WholeWord     bool     `json:"whole_word"`
	ShowContext   *bool    `json:"show_context"`
	ContextChars  *int     `json:"context_chars" validate:"omitempty,min=0,max=500"`
	Files         []string `json:"files" validate:"omitempty,dive,required"`
}

// toQuery shows context unless the request turns it off explicitly.
func (r *SearchRequest) toQuery(defaultContextChars int) search.Query {
	query := search.Query{
		Text:          r.Query,
		CaseSensitive: r.CaseSensitive,
		WholeWord:     r.WholeWord,
		Targets:       r.Files,
	}

	if r.ShowContext == nil || *r.ShowContext {
		query.ContextRadius = defaultContextChars
		if r.ContextChars != nil {
			query.ContextRadius = *r.ContextChars
		}
	}

	return query
}

func SetupSearch(router *gin.Engine, logger logger.Logger, sess *session.Session, validator *validation.Validator, defaultContextChars int) {
	router.POST("/search", handleSearch(sess, logger, validator, defaultContextChars))
	router.POST("/search/export", handleExport(sess, logger, validator, defaultContextChars))
}

func handleSearch(sess *session.Session, logger logger.Logger, validator *validation.Validator, defaultContextChars int) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := bindSearchQuery(c, logger, validator, defaultContextChars)
		if !ok {
			return
		}

		result, ok := runSearch(c, sess, logger, query)
		if !ok {
			return
		}

		writeResponse(c, result, http.StatusOK, nil)
	}
}

func handleExport(sess *session.Session, logger logger.Logger, validator *validation.Validator, defaultContextChars int) gin.HandlerFunc {
	return func(c *gin.Context) {
		query, ok := bindSearchQuery(c, logger, validator, defaultContextChars)
		if !ok {
			return
		}

		result, ok := runSearch(c, sess, logger, query)
		if !ok {
			return
		}

		report := export.FormatReport(query.Text, result)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ReportFilename(query.Text)))
		c.Data(http.StatusOK, reportContentType, []byte(report))
	}
}

func bindSearchQuery(c *gin.Context, logger logger.Logger, validator *validation.Validator, defaultContextChars int) (search.Query, bool) {
	request := SearchRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Warn("could not extract expected params from search request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
		return search.Query{}, false
	}

	if err := validator.Validate(request); err != nil {
		logger.Warn("could not validate search request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return search.Query{}, false
	}

	return request.toQuery(defaultContextChars), true
}

func runSearch(c *gin.Context, sess *session.Session, logger logger.Logger, query search.Query) (*search.Result, bool) {
	result, err := sess.Search(query)
	if err == nil {
		return result, true
	}

	c.Abort()
	switch {
	case errors.Is(err, search.ErrQueryTooLong):
		writeResponse(c, nil, http.StatusNotAcceptable, []string{fmt.Sprintf("query must be at most %d characters", search.MaxQueryLength)})
	case errors.Is(err, search.ErrInvalidPattern):
		writeResponse(c, nil, http.StatusBadRequest, []string{"invalid search query"})
	default:
		logger.Error("search failed", "err", err.Error())
		writeResponse(c, nil, http.StatusInternalServerError, []string{"search failed"})
	}

	return nil, false
}
