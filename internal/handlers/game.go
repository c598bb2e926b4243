package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"waitroom/internal/engine"
	"waitroom/internal/export"
)

// GameHandler forwards shell commands into the trial engine and returns its snapshot.
type GameHandler struct {
	log    *zap.Logger
	engine *engine.Engine
}

func NewGameHandler(log *zap.Logger, eng *engine.Engine) *GameHandler {
	return &GameHandler{log: log, engine: eng}
}

type clickResponse struct {
	Outcome engine.ClickOutcome `json:"outcome"`
	engine.Snapshot
}

func (h *GameHandler) Start(c *gin.Context) {
	h.engine.Start()
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

func (h *GameHandler) Reset(c *gin.Context) {
	h.engine.Reset()
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Click stamps the click on receipt so network latency after arrival never
// counts toward the reaction time.
func (h *GameHandler) Click(c *gin.Context) {
	outcome := h.engine.RegisterClick(h.engine.Now())
	c.JSON(http.StatusOK, clickResponse{Outcome: outcome, Snapshot: h.engine.Snapshot()})
}

func (h *GameHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot())
}

// Trials lists the concluded trials of the current session.
func (h *GameHandler) Trials(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Trials())
}

func (h *GameHandler) Result(c *gin.Context) {
	format := c.DefaultQuery("format", export.FormatJSON)

	data, err := export.Encode(h.engine.Result(), format)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to encode result", zap.Error(err), zap.String("format", format))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode result"})
		return
	}

	c.Data(http.StatusOK, export.ContentType(format), data)
}

func (h *GameHandler) Chart(c *gin.Context) {
	chart := generateReactionChart(h.engine.Result())
	c.JSON(http.StatusOK, chart.JSON())
}
