package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of an image path argument.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the frame image file",
}

// plateProperty is the schema of an optional plate argument.
var plateProperty = map[string]interface{}{
	"type":        "string",
	"description": "Normalized plate string, e.g. 30A-123.45. Defaults to the plate currently in view.",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Recognition
		{
			Name:        "plate_recognize",
			Description: "Read the license plate in a still frame. Returns the raw and normalized plate text, the confidence score and how the plate region was extracted. The plate becomes the current plate for check-in.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"include_roi": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the rectified plate region as base64-encoded PNG",
						"default":     false,
					},
					"annotate": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the frame with the plate region outlined as base64-encoded PNG",
						"default":     false,
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for returned images. Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_normalize",
			Description: "Normalize a raw plate string: strip spaces and underscores, uppercase, map look-alike letters to digits and insert the dash and dot separators.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw plate text as read from the characters",
					},
				},
				"required": []string{"text"},
			},
		},

		// Capture
		{
			Name:        "plate_observe",
			Description: "Feed the next frame of a stream to the capture tracker. Frames skipped by the frame stride are not recognized. Returns the reading, the tracker state and the capture event if this frame committed one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_session_reset",
			Description: "Drop the tracked candidate, any running cooldown and the current plate, e.g. when the camera moves to another gate.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Bookkeeping
		{
			Name:        "plate_status",
			Description: "Report whether a plate is in the lot and when it was checked in.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"plate": plateProperty,
				},
			},
		},
		{
			Name:        "plate_check_in",
			Description: "Store the current frame under the plate currently in view. When path is given, that frame is recognized first. Fails if no plate is recognized or the plate is already in the lot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
			},
		},
		{
			Name:        "plate_check_out",
			Description: "Remove the stored entry of a plate. Reports whether the plate was in the lot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"plate": plateProperty,
				},
			},
		},
		{
			Name:        "plate_fee",
			Description: "Get the flat parking fee in VND for a vehicle kind.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"bike", "car"},
						"description": "Vehicle kind",
					},
				},
				"required": []string{"kind"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
