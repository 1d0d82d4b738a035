package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/plate-capture/internal/capture"
	"github.com/ironsheep/plate-capture/internal/imaging"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_recognize", "plate_status").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads frames as needed
//  4. Calls the session or plate package
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Recognition
	case "plate_recognize":
		return s.handlePlateRecognize(ctx, args)
	case "plate_normalize":
		return s.handlePlateNormalize(args)

	// Capture
	case "plate_observe":
		return s.handlePlateObserve(ctx, args)
	case "plate_session_reset":
		return s.handleSessionReset()

	// Bookkeeping
	case "plate_status":
		return s.handlePlateStatus(args)
	case "plate_check_in":
		return s.handlePlateCheckIn(ctx, args)
	case "plate_check_out":
		return s.handlePlateCheckOut(args)
	case "plate_fee":
		return s.handlePlateFee(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Recognition Handlers ===

type plateRecognizeArgs struct {
	Path       string  `json:"path"`
	IncludeROI bool    `json:"include_roi"`
	Annotate   bool    `json:"annotate"`
	Scale      float64 `json:"scale"`
}

// RecognizeResult is the plate_recognize result.
type RecognizeResult struct {
	*plate.Reading

	ROI       *imaging.EncodedImage `json:"roi,omitempty"`
	Annotated *imaging.EncodedImage `json:"annotated,omitempty"`
}

func (s *Server) handlePlateRecognize(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateRecognizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	reading, err := s.session.Recognize(ctx, frame)
	if err != nil {
		return nil, err
	}

	result := &RecognizeResult{Reading: reading}
	if a.IncludeROI && reading.ROI != nil {
		if result.ROI, err = imaging.Encode(reading.ROI, a.Scale); err != nil {
			return nil, err
		}
	}
	if a.Annotate {
		if result.Annotated, err = imaging.Encode(session.Annotate(frame, reading), a.Scale); err != nil {
			return nil, err
		}
	}
	return result, nil
}

type plateNormalizeArgs struct {
	Text string `json:"text"`
}

func (s *Server) handlePlateNormalize(args json.RawMessage) (interface{}, error) {
	var a plateNormalizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"raw":  a.Text,
		"text": plate.Normalize(a.Text),
	}, nil
}

// === Capture Handlers ===

type plateObserveArgs struct {
	Path string `json:"path"`
}

// ObserveResult is the plate_observe result.
type ObserveResult struct {
	Skipped bool           `json:"skipped"`
	Reading *plate.Reading `json:"reading,omitempty"`
	Event   *capture.Event `json:"event,omitempty"`
	State   capture.State  `json:"state"`
}

func (s *Server) handlePlateObserve(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateObserveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Stream frames are distinct files; they bypass the cache.
	frame, err := imaging.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.session.ProcessFrame(ctx, frame)
	if err != nil {
		return nil, err
	}
	return &ObserveResult{
		Skipped: res.Skipped,
		Reading: res.Reading,
		Event:   res.Event,
		State:   s.session.State(),
	}, nil
}

func (s *Server) handleSessionReset() (interface{}, error) {
	s.session.Reset()
	s.cache.Clear()
	return map[string]interface{}{
		"status": "reset",
		"state":  s.session.State(),
	}, nil
}

// === Bookkeeping Handlers ===

type plateArgs struct {
	Plate string `json:"plate"`
}

func (s *Server) handlePlateStatus(args json.RawMessage) (interface{}, error) {
	var a plateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.session.Status(a.Plate)
}

type plateCheckInArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePlateCheckIn(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a plateCheckInArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path != "" {
		frame, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		if _, err := s.session.Recognize(ctx, frame); err != nil {
			return nil, err
		}
	}
	return s.session.CheckIn()
}

func (s *Server) handlePlateCheckOut(args json.RawMessage) (interface{}, error) {
	var a plateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	p, existed, err := s.session.CheckOut(a.Plate)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"plate":   p,
		"existed": existed,
	}, nil
}

type plateFeeArgs struct {
	Kind string `json:"kind"`
}

func (s *Server) handlePlateFee(args json.RawMessage) (interface{}, error) {
	var a plateFeeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	fee, err := session.Fee(session.VehicleKind(a.Kind))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"kind":     a.Kind,
		"fee":      fee,
		"currency": "VND",
	}, nil
}
