package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/conversation"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/extraction"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/models"
)

type StartChatRequest struct {
	conversation.Profile
	Location *geo.Coordinates `json:"location"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type PrepareResponse struct {
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Skipped   int                       `json:"skipped"`
	Results   []models.ExtractionResult `json:"results"`
	Notice    extraction.Notice         `json:"notice"`
}

func (h *handler) chatSession(c *gin.Context) *conversation.Session {
	user, _ := middleware.CurrentUser(c)
	return h.chat.Session(user)
}

// PrepareChat extracts text from the user's medical documents for the next chat.
func (h *handler) PrepareChat(c *gin.Context) {
	report := h.chatSession(c).LoadDocuments(c.Request.Context(), middleware.SessionSecret(c))
	c.JSON(http.StatusOK, PrepareResponse{
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Skipped:   report.Skipped,
		Results:   report.Results,
		Notice:    report.Notice,
	})
}

func (h *handler) StartChat(c *gin.Context) {
	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.chatSession(c)
	if err := s.Start(c.Request.Context(), req.Profile, req.Location); err != nil {
		var verr *conversation.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields.", "missing": verr.Missing})
		case errors.Is(err, conversation.ErrAlreadyActive):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *handler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exchange, err := h.chatSession(c).Send(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, conversation.ErrNotActive), errors.Is(err, conversation.ErrSessionEnded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, exchange)
}

func (h *handler) EndChat(c *gin.Context) {
	s := h.chatSession(c)
	s.End()
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *handler) GetTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatSession(c).Snapshot())
}
