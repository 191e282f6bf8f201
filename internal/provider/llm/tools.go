package llm

import (
	"google.golang.org/genai"
)

// toolDeclarations is the fixed primitive surface the vision model may
// invoke against the controlled display (spec.md §4.3: "click, type, key,
// scroll, screenshot"), plus a terminal "done" call carrying the model's
// JSON result payload.
func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "click",
				Description: "Click the display at pixel coordinates (x, y).",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"x": {Type: genai.TypeInteger},
						"y": {Type: genai.TypeInteger},
					},
					Required: []string{"x", "y"},
				},
			},
			{
				Name:        "type",
				Description: "Type text into whatever element currently has focus.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text": {Type: genai.TypeString},
					},
					Required: []string{"text"},
				},
			},
			{
				Name:        "key",
				Description: "Press a single named key (e.g. \"Enter\", \"Tab\", \"Escape\").",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {Type: genai.TypeString},
					},
					Required: []string{"name"},
				},
			},
			{
				Name:        "scroll",
				Description: "Scroll the display by (dx, dy) pixels.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"dx": {Type: genai.TypeInteger},
						"dy": {Type: genai.TypeInteger},
					},
					Required: []string{"dx", "dy"},
				},
			},
			{
				Name:        "screenshot",
				Description: "Request a fresh screenshot of the current display state.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
				},
			},
			{
				Name:        "done",
				Description: "Declare the instruction complete. Pass a JSON-encodable result string, e.g. {\"article_id\":\"123\",\"article_url\":\"https://...\",\"status\":\"published\"} for terminal calls, or {\"status\":\"ok\"} otherwise.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"result": {Type: genai.TypeString},
					},
					Required: []string{"result"},
				},
			},
		},
	}}
}
