package httpapi

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/plate-capture/internal/capture"
	"github.com/ironsheep/plate-capture/internal/imaging"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/session"
	"github.com/ironsheep/plate-capture/internal/store"
)

// FrameRequest carries an uploaded frame.
type FrameRequest struct {
	ImageBase64 string `json:"image_base64"`

	// Observe feeds the frame to the capture tracker instead of reading it
	// once.
	Observe bool `json:"observe"`
}

// RecognizeResponse is the result of POST /recognize.
type RecognizeResponse struct {
	DetectedPlate string         `json:"detected_plate"`
	RawText       string         `json:"raw_text"`
	Confidence    float64        `json:"confidence"`
	Mode          string         `json:"mode"`
	Debug         string         `json:"debug"`
	Fee           *int           `json:"fee,omitempty"`
	Skipped       bool           `json:"skipped,omitempty"`
	Event         *capture.Event `json:"event,omitempty"`
}

// Handler serves the session routes.
type Handler struct {
	session *session.Session
}

// NewHandler creates a Handler.
func NewHandler(sess *session.Session) *Handler {
	return &Handler{session: sess}
}

// POST /api/v1/recognize[?kind=bike|car]
func (h *Handler) Recognize(c *gin.Context) {
	var req FrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	frame, ok := decodeFrame(c, req.ImageBase64)
	if !ok {
		return
	}

	var fee *int
	if kind := c.Query("kind"); kind != "" {
		f, err := session.Fee(session.VehicleKind(kind))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fee = &f
	}

	resp := RecognizeResponse{}
	if req.Observe {
		res, err := h.session.ProcessFrame(c.Request.Context(), frame)
		if err != nil {
			log.Printf("httpapi: observe failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process frame", "details": err.Error()})
			return
		}
		if res.Skipped {
			c.JSON(http.StatusOK, RecognizeResponse{Skipped: true})
			return
		}
		fill(&resp, res.Reading)
		resp.Event = res.Event
	} else {
		reading, err := h.session.Recognize(c.Request.Context(), frame)
		if err != nil {
			log.Printf("httpapi: recognize failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recognize frame", "details": err.Error()})
			return
		}
		fill(&resp, reading)
	}
	if resp.DetectedPlate != "" {
		resp.Fee = fee
	}
	c.JSON(http.StatusOK, resp)
}

// fill copies a reading into resp. Unknown plates leave DetectedPlate empty.
func fill(resp *RecognizeResponse, r *plate.Reading) {
	if r.Known() {
		resp.DetectedPlate = r.Text
	}
	resp.RawText = r.RawText
	resp.Confidence = r.Score
	resp.Mode = string(r.Mode)
	resp.Debug = r.Debug
}

// POST /api/v1/check-in
//
// An optional frame in the body is recognized first; otherwise the plate
// currently in view is used.
func (h *Handler) CheckIn(c *gin.Context) {
	var req FrameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
			return
		}
	}
	if req.ImageBase64 != "" {
		frame, ok := decodeFrame(c, req.ImageBase64)
		if !ok {
			return
		}
		if _, err := h.session.Recognize(c.Request.Context(), frame); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recognize frame", "details": err.Error()})
			return
		}
	}

	entry, err := h.session.CheckIn()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GET /api/v1/plates/:plate
func (h *Handler) Status(c *gin.Context) {
	st, err := h.session.Status(c.Param("plate"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// DELETE /api/v1/plates/:plate
func (h *Handler) CheckOut(c *gin.Context) {
	p, existed, err := h.session.CheckOut(c.Param("plate"))
	if err != nil {
		writeError(c, err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "plate not in lot: " + p})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plate": p, "checked_out": true})
}

// GET /api/v1/fee/:kind
func (h *Handler) Fee(c *gin.Context) {
	kind := c.Param("kind")
	fee, err := session.Fee(session.VehicleKind(kind))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "fee": fee, "currency": "VND"})
}

// GET /api/v1/state
func (h *Handler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.State())
}

// POST /api/v1/session/reset
func (h *Handler) Reset(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, h.session.State())
}

// decodeFrame decodes a base64 image, writing a 400 response on failure.
func decodeFrame(c *gin.Context, data string) (image.Image, bool) {
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is required"})
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image data"})
		return nil, false
	}
	frame, err := imaging.DecodeFrame(bytes.NewReader(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return frame, true
}

// writeError maps session and store errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoPlate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidPlate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("httpapi: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
	}
}
