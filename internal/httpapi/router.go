// Package httpapi exposes a capture session over HTTP with gin.
//
// Routes:
//
//	POST   /api/v1/recognize        recognize (or observe) an uploaded frame
//	POST   /api/v1/check-in         check in the plate currently in view
//	GET    /api/v1/plates/:plate    lot status of a plate
//	DELETE /api/v1/plates/:plate    check a plate out
//	GET    /api/v1/fee/:kind        flat fee for a vehicle kind
//	GET    /api/v1/state            capture tracker state
//	POST   /api/v1/session/reset    reset the tracker
//
// Errors are JSON objects with an "error" field.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-capture/internal/session"
)

// NewRouter builds the gin engine serving sess.
func NewRouter(sess *session.Session) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors())

	h := NewHandler(sess)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/recognize", h.Recognize)
		v1.POST("/check-in", h.CheckIn)

		plates := v1.Group("/plates")
		{
			plates.GET("/:plate", h.Status)
			plates.DELETE("/:plate", h.CheckOut)
		}

		v1.GET("/fee/:kind", h.Fee)
		v1.GET("/state", h.State)
		v1.POST("/session/reset", h.Reset)
	}
	return r
}

// cors allows browser dashboards on other origins.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
