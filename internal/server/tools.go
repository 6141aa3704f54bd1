package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolLoad          = "label_load"
	ToolPreprocess    = "label_preprocess"
	ToolOCRFragments  = "label_ocr_fragments"
	ToolExtractText   = "label_extract_text"
	ToolReconstruct   = "label_reconstruct"
	ToolNormalizeText = "label_normalize_text"
	ToolAnalyzeText   = "label_analyze_text"
	ToolAnalyze       = "label_analyze"
	ToolHealth        = "label_health"
)

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the label photo",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional crop to the nutrition panel, in source pixels. x2 and y2 are exclusive.",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer"},
			"y1": map[string]interface{}{"type": "integer"},
			"x2": map[string]interface{}{"type": "integer"},
			"y2": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func skipEnhanceProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Run OCR on the photo as loaded, without grayscale, contrast, sharpening or upscaling. Default false",
		"default":     false,
	}
}

// photoSchema is the input schema shared by tools that read a photo.
func photoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":         pathProperty(),
			"region":       regionProperty(),
			"skip_enhance": skipEnhanceProperty(),
		},
		"required": []string{"path"},
	}
}

func textSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"text"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image
		{
			Name:        ToolLoad,
			Description: "Load a label photo and return its dimensions, format, whether it will be upscaled for OCR, and a contrast estimate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolPreprocess,
			Description: "Return the photo exactly as the OCR engine will see it (cropped, grayscale, contrast boosted, sharpened, upscaled) as base64-encoded PNG.",
			InputSchema: photoSchema(),
		},

		// OCR
		{
			Name:        ToolOCRFragments,
			Description: "Run OCR and return the raw text fragments with confidence and four-corner bounding boxes, before any line reconstruction.",
			InputSchema: photoSchema(),
		},
		{
			Name:        ToolExtractText,
			Description: "Read a nutrition label: OCR, rebuild the label rows top to bottom, pair nutrients with amounts (\"Sodium: 140mg\") and correct common OCR misreads.",
			InputSchema: photoSchema(),
		},

		// Text
		{
			Name:        ToolReconstruct,
			Description: "Rebuild label lines from OCR fragments supplied as [[[[x,y],[x,y],[x,y],[x,y]],[text,confidence]], ...]. Fragments at or below 0.5 confidence are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"fragments": map[string]interface{}{
						"type":        "array",
						"description": "OCR fragments, each a [box, [text, confidence]] pair",
					},
				},
				"required": []string{"fragments"},
			},
		},
		{
			Name:        ToolNormalizeText,
			Description: "Correct common OCR misreads in nutrition label text (Proteln, Sodlum, rng, ...) and report which label keywords were found.",
			InputSchema: textSchema("Label text, one row per line"),
		},

		// Analysis
		{
			Name:        ToolAnalyzeText,
			Description: "Classify label text as healthy or unhealthy and explain why, with health impact and recommended consumption.",
			InputSchema: textSchema("Normalized label text"),
		},
		{
			Name:        ToolAnalyze,
			Description: "Read a nutrition label photo and analyze it end to end. Returns the extracted text and the verdict block.",
			InputSchema: photoSchema(),
		},
		{
			Name:        ToolHealth,
			Description: "Report OCR engine availability, whether analysis is configured, and the number of cached photos.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
