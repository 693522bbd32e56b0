package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/ingest"
	"github.com/meghashyamc/docsearch/services/viewer"
	"github.com/meghashyamc/docsearch/session"
	"github.com/meghashyamc/docsearch/validation"
)

const uploadFormField = "files"

type AddedDocument struct {
	ID    string      `json:"id"`
	Chars int         `json:"chars"`
	Kind  corpus.Kind `json:"kind"`
}

type RejectedFile struct {
	Filename string        `json:"filename"`
	Reason   ingest.Reason `json:"reason"`
}

type UploadResponse struct {
	Added    []AddedDocument `json:"added"`
	Rejected []RejectedFile  `json:"rejected"`
}

type ListDocumentsResponse struct {
	Documents []*corpus.Document `json:"documents"`
	Total     int                `json:"total"`
}

type ViewDocumentRequest struct {
	Mode         string `form:"mode" json:"mode" validate:"valid_view_mode"`
	Page         int    `form:"page" json:"page" validate:"min=0"`
	LinesPerPage int    `form:"lines_per_page" json:"lines_per_page" validate:"min=0"`
}

func (r *ViewDocumentRequest) setDefaults() {
	if r.Mode == "" {
		r.Mode = string(viewer.ModeFull)
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type ViewDocumentResponse struct {
	Document    *corpus.Document `json:"document"`
	Mode        viewer.Mode      `json:"mode"`
	Content     string           `json:"content"`
	Page        *viewer.Page     `json:"page,omitempty"`
	PageDetails *Pagination      `json:"page_details,omitempty"`
}

func SetupDocuments(router *gin.Engine, logger logger.Logger, sess *session.Session, validator *validation.Validator) {
	router.POST("/documents", handleUpload(sess, logger))
	router.GET("/documents", handleListDocuments(sess))
	router.GET("/documents/:id", handleViewDocument(sess, logger, validator))
	router.GET("/documents/:id/download", handleDownloadDocument(sess))
	router.DELETE("/documents/:id", handleRemoveDocument(sess, logger))
	router.DELETE("/documents", handleClearDocuments(sess, logger))
}

func handleUpload(sess *session.Session, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			logger.Warn("could not parse multipart upload", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract uploaded files"})
			return
		}

		files := form.File[uploadFormField]
		if len(files) == 0 {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{"missing required field 'files'"})
			return
		}

		uploadResponse := UploadResponse{
			Added:    []AddedDocument{},
			Rejected: []RejectedFile{},
		}

		// Each file succeeds or fails on its own.
		for _, fileHeader := range files {
			doc, err := addUploadedFile(sess, fileHeader)
			if err != nil {
				logger.Warn("rejected uploaded file", "filename", fileHeader.Filename, "err", err.Error())
				uploadResponse.Rejected = append(uploadResponse.Rejected, rejectedFile(fileHeader.Filename, err))
				continue
			}
			uploadResponse.Added = append(uploadResponse.Added, AddedDocument{
				ID:    doc.ID,
				Chars: doc.Metrics.Chars,
				Kind:  doc.Kind,
			})
		}

		writeResponse(c, uploadResponse, http.StatusOK, nil)
	}
}

func addUploadedFile(sess *session.Session, fileHeader *multipart.FileHeader) (*corpus.Document, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return sess.AddReader(fileHeader.Filename, file)
}

func rejectedFile(filename string, err error) RejectedFile {
	var rejection *ingest.RejectionError
	if errors.As(err, &rejection) {
		return RejectedFile{Filename: rejection.Filename, Reason: rejection.Reason}
	}

	return RejectedFile{Filename: ingest.SanitizeFilename(filename), Reason: ingest.ReasonUnreadable}
}

func handleListDocuments(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs := sess.Documents()
		writeResponse(c, ListDocumentsResponse{Documents: docs, Total: len(docs)}, http.StatusOK, nil)
	}
}

func handleViewDocument(sess *session.Session, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ViewDocumentRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from view request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate view request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}
		request.setDefaults()

		doc, err := sess.Document(c.Param("id"))
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotFound, []string{"document not found"})
			return
		}

		viewResponse := ViewDocumentResponse{
			Document: doc,
			Mode:     viewer.Mode(request.Mode),
		}

		switch viewResponse.Mode {
		case viewer.ModeNumbered:
			viewResponse.Content = viewer.Numbered(doc)
		case viewer.ModePaginated:
			page := viewer.Paginate(doc, request.Page, request.LinesPerPage)
			pageDetails := calculatePagination(page.TotalLines, page.LinesPerPage, (page.Number-1)*page.LinesPerPage)
			viewResponse.Content = page.Content
			viewResponse.Page = &page
			viewResponse.PageDetails = &pageDetails
		default:
			viewResponse.Content = viewer.Full(doc)
		}

		writeResponse(c, viewResponse, http.StatusOK, nil)
	}
}

func handleDownloadDocument(sess *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := sess.Document(c.Param("id"))
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotFound, []string{"document not found"})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", viewer.DownloadFilename(doc)))
		c.Data(http.StatusOK, reportContentType, []byte(viewer.Full(doc)))
	}
}

func handleRemoveDocument(sess *session.Session, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sess.Remove(c.Param("id")); err != nil {
			if errors.Is(err, corpus.ErrNotFound) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotFound, []string{"document not found"})
				return
			}
			logger.Error("could not remove document", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"failed to remove document"})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func handleClearDocuments(sess *session.Session, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sess.Clear(); err != nil {
			logger.Error("could not clear session", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{"failed to clear documents"})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
