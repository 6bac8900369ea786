package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MissingFieldMessage is returned when the request has no comentario field
const MissingFieldMessage = `Campo "comentario" ausente no JSON`

// handlePredict serves POST /predict {"comentario": ...}
func (s *Server) handlePredict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingFieldMessage})
		return
	}

	raw, text, ok := commentField(body)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": MissingFieldMessage})
		return
	}

	p, err := s.service.Predict(c.Request.Context(), text)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction cancelled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comentario_original": raw,
		"sentimento_previsto": p.Label,
	})
}

// commentField extracts "comentario" from a JSON object. Strings are used
// as is, null is read as the text "None" and any other value as its JSON
// text.
func commentField(body []byte) (json.RawMessage, string, bool) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return nil, "", false
	}

	raw, ok := payload["comentario"]
	if !ok {
		return nil, "", false
	}

	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return raw, "None", true
	case len(raw) > 0 && raw[0] == '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, "", false
		}
		return raw, text, true
	default:
		return raw, string(raw), true
	}
}

// handleHealth serves GET /healthz with model metadata
func (s *Server) handleHealth(c *gin.Context) {
	info := s.service.Info()
	stats := s.service.Stats()

	cache := "ok"
	if err := s.service.Ping(c.Request.Context()); err != nil {
		cache = err.Error()
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"status":          "ok",
		"model_id":        info.ModelID,
		"classes":         s.service.Classes(),
		"vocabulary_size": s.service.VocabularySize(),
		"trained_at":      info.TrainedAt.Format(time.RFC3339),
		"accuracy":        info.Accuracy,
		"cache":           cache,
		"cache_hits":      stats.CacheHits,
		"cache_misses":    stats.CacheMisses,
	})
}
