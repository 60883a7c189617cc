// Package api exposes the engine over HTTP.
package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbastide/calendis/internal/engine"
	"github.com/mbastide/calendis/internal/ground"
)

// #region router

// NewRouter builds the HTTP surface. One query endpoint, one health probe.
func NewRouter(eng *engine.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/query", func(c *gin.Context) {
		var q engine.Query
		if err := c.ShouldBindJSON(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requête JSON invalide : " + err.Error()})
			return
		}
		resp, err := eng.Answer(c.Request.Context(), q)
		if err != nil {
			status, msg := classify(err)
			if status >= http.StatusInternalServerError {
				log.Printf("[API] query failed: %v", err)
			}
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, resp)
	})

	return r
}

// classify maps pipeline errors onto HTTP statuses without leaking internals.
func classify(err error) (int, string) {
	var ie *engine.InputError
	if errors.As(err, &ie) {
		return http.StatusBadRequest, ie.Msg
	}
	var te *engine.TruthError
	if errors.As(err, &te) {
		return http.StatusServiceUnavailable, "les données nécessaires sont indisponibles pour cette demande"
	}
	var cv *ground.ContractViolation
	if errors.As(err, &cv) {
		return http.StatusInternalServerError, "réponse retenue : impossible de garantir sa traçabilité"
	}
	return http.StatusInternalServerError, "erreur interne"
}

// #endregion router
