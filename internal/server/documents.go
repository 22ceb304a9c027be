package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/mailcanvas/internal/canvas"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/documents"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/export"
	"github.com/MarcoPoloResearchLab/mailcanvas/internal/suggest"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	htmlContentType     = "text/html; charset=utf-8"
	suggestionsNotice   = "Failed to get AI suggestions"
	maxDocumentBodySize = 4 << 20
)

type documentIDResponse struct {
	ID string `json:"id"`
}

type documentListResponse struct {
	Documents []documents.Summary `json:"documents"`
}

type suggestionsResponse struct {
	suggest.Suggestions
	Notice string `json:"notice,omitempty"`
}

func (h *httpHandler) handleListDocuments(c *gin.Context) {
	summaries, err := h.documents.ListDocuments(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, "list_failed", err)
		return
	}
	c.JSON(http.StatusOK, documentListResponse{Documents: summaries})
}

func (h *httpHandler) handleLoadDocument(c *gin.Context) {
	document, err := h.documents.LoadDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "load_failed", err)
		return
	}
	c.JSON(http.StatusOK, document)
}

func (h *httpHandler) handleCreateDocument(c *gin.Context) {
	h.saveDocument(c, "")
}

func (h *httpHandler) handleUpdateDocument(c *gin.Context) {
	h.saveDocument(c, c.Param("id"))
}

func (h *httpHandler) saveDocument(c *gin.Context, templateID string) {
	document, ok := decodeDocument(c)
	if !ok {
		return
	}
	savedID, err := h.documents.SaveDocument(c.Request.Context(), templateID, document)
	if err != nil {
		h.respondServiceError(c, "save_failed", err)
		return
	}
	h.publishSaved(c, savedID)
	c.JSON(http.StatusOK, documentIDResponse{ID: savedID})
}

func (h *httpHandler) handleDuplicateDocument(c *gin.Context) {
	duplicateID, err := h.documents.DuplicateDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondServiceError(c, "duplicate_failed", err)
		return
	}
	h.publishSaved(c, duplicateID)
	c.JSON(http.StatusOK, documentIDResponse{ID: duplicateID})
}

func (h *httpHandler) handleExportDocument(c *gin.Context) {
	templateID := c.Param("id")
	document, err := h.documents.LoadDocument(c.Request.Context(), templateID)
	if err != nil {
		h.respondServiceError(c, "load_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="mailcanvas-`+sanitizeFilename(templateID)+`.html"`)
	c.Data(http.StatusOK, htmlContentType, []byte(export.Render(document)))
}

func (h *httpHandler) handleRender(c *gin.Context) {
	document, ok := decodeDocument(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(export.Render(document)))
}

func (h *httpHandler) handleSuggestions(c *gin.Context) {
	var request suggest.Request
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	suggestions, err := h.suggester.Suggest(c.Request.Context(), request)
	response := suggestionsResponse{Suggestions: suggestions}
	if err != nil {
		if !errors.Is(err, suggest.ErrUpstreamUnavailable) {
			h.logger.Error("suggestions failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestions_failed", "message": suggestionsNotice})
			return
		}
		response.Notice = suggestionsNotice
	}
	c.JSON(http.StatusOK, response)
}

// decodeDocument reads a canvas document body, normalising unknown content. Only
// syntactically invalid JSON is rejected.
func decodeDocument(c *gin.Context) (canvas.Document, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBodySize)
	raw, err := c.GetRawData()
	if err != nil || !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_document"})
		return canvas.Document{}, false
	}
	return canvas.NormalizeDocument(raw), true
}

func (h *httpHandler) publishSaved(c *gin.Context, templateID string) {
	owner, ok := documents.OwnerFrom(c.Request.Context())
	if !ok {
		return
	}
	h.events.Publish(DocumentEvent{
		OwnerID:    owner,
		EventType:  EventDocumentSaved,
		TemplateID: templateID,
		Timestamp:  time.Now().UTC(),
	})
}

func (h *httpHandler) respondServiceError(c *gin.Context, fallback string, err error) {
	payload := gin.H{}
	var serviceErr *documents.ServiceError
	if errors.As(err, &serviceErr) {
		payload["code"] = serviceErr.Code()
	}

	switch {
	case errors.Is(err, documents.ErrUnauthenticated):
		payload["error"] = "unauthorized"
		payload["message"] = signInMessage
		c.JSON(http.StatusUnauthorized, payload)
	case errors.Is(err, documents.ErrNotFound):
		payload["error"] = "not_found"
		c.JSON(http.StatusNotFound, payload)
	case errors.Is(err, documents.ErrPersistence):
		payload["error"] = "save_failed"
		c.JSON(http.StatusInternalServerError, payload)
	default:
		h.logger.Error("document request failed", zap.String("error_code", fallback), zap.Error(err))
		payload["error"] = fallback
		c.JSON(http.StatusInternalServerError, payload)
	}
}

func sanitizeFilename(value string) string {
	safe := make([]rune, 0, len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		}
	}
	if len(safe) == 0 {
		return "template"
	}
	return string(safe)
}
