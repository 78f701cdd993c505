package places

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the autocomplete endpoint. Public: the onboarding form runs
// before signup.
type Handler struct {
	client *Client
}

// NewHandler returns a places handler backed by client.
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

// Register mounts the places routes on the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/places/autocomplete", h.autocomplete)
}

type autocompleteRequest struct {
	Input        string `json:"input"`
	SessionToken string `json:"session_token"`
}

func (h *Handler) autocomplete(c *gin.Context) {
	var req autocompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	preds, err := h.client.Autocomplete(c.Request.Context(), req.Input, req.SessionToken)
	if err != nil {
		if errors.Is(err, ErrMissingInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "autocomplete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": preds})
}
