package llm

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"google.golang.org/genai"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

const systemPreamble = `You are operating a content-management-system admin UI through a
remote display. You are given a screenshot and an instruction describing one
step of a larger publishing workflow. Issue exactly one tool call per turn:
click, type, key, scroll, or screenshot, to progress the instruction. When
the instruction is fully satisfied, call done with a short JSON result
string. Never narrate; only call tools.`

// instruct drives one instruction to completion: it alternates model calls
// (screenshot + instruction/tool-results) with tool execution against the
// live page, until the model calls done or MaxIterations is exhausted
// (§4.3 "a running iteration cap bounds any single call").
func (p *Provider) instruct(ctx context.Context, instruction string) error {
	_, err := p.converse(ctx, instruction)
	return err
}

// converse runs the loop and additionally returns the model's final "done"
// result string, used by terminal-call composite ops to extract the
// {article_id, article_url, status} payload.
func (p *Provider) converse(ctx context.Context, instruction string) (string, error) {
	maxIter := p.cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = 12
	}

	var history []*genai.Content
	history = append(history, genai.NewContentFromText(instruction, genai.RoleUser))

	for i := 0; i < maxIter; i++ {
		shot, err := p.CaptureScreenshot(ctx)
		if err != nil {
			return "", err
		}
		history = append(history, &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromBytes(shot, "image/png"),
			},
		})

		resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, history, &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPreamble, genai.RoleUser),
			Tools:             toolDeclarations(),
		})
		if err != nil {
			return "", model.NewPhaseError(model.ErrNavigationTimeout, "model call failed", err)
		}
		if resp.UsageMetadata != nil {
			p.tokensUsed += int(resp.UsageMetadata.PromptTokenCount) + int(resp.UsageMetadata.CandidatesTokenCount)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "model returned no candidates", nil)
		}
		content := resp.Candidates[0].Content
		history = append(history, content)

		call := firstFunctionCall(content)
		if call == nil {
			// Model answered in free text with no tool call; treat it as
			// a terminal message per §4.3's "when the model returns a
			// terminal message" fallback path.
			return resp.Text(), nil
		}

		if call.Name == "done" {
			result, _ := call.Args["result"].(string)
			return result, nil
		}

		outcome, execErr := p.execTool(call)
		history = append(history, &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromFunctionResponse(call.Name, map[string]any{"outcome": outcome}),
			},
		})
		if execErr != nil {
			return "", execErr
		}
	}
	return "", model.NewPhaseError(model.ErrElementNotFound, "instruction did not complete within iteration cap", nil)
}

func firstFunctionCall(c *genai.Content) *genai.FunctionCall {
	for _, part := range c.Parts {
		if part.FunctionCall != nil {
			return part.FunctionCall
		}
	}
	return nil
}

// execTool issues the model's chosen primitive against the live page.
func (p *Provider) execTool(call *genai.FunctionCall) (string, error) {
	switch call.Name {
	case "click":
		x, _ := toFloat(call.Args["x"])
		y, _ := toFloat(call.Args["y"])
		if err := p.page.Mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "click move failed", err)
		}
		if err := p.page.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "click failed", err)
		}
		return "clicked", nil

	case "type":
		text, _ := call.Args["text"].(string)
		if err := p.page.Keyboard.Type(stringToKeys(text)...); err != nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "type failed", err)
		}
		return "typed", nil

	case "key":
		name, _ := call.Args["name"].(string)
		key, ok := namedKey(name)
		if !ok {
			return "", model.NewPhaseError(model.ErrElementNotFound, "unknown key: "+name, nil)
		}
		if err := p.page.Keyboard.Type(key); err != nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "key press failed", err)
		}
		return "pressed", nil

	case "scroll":
		dx, _ := toFloat(call.Args["dx"])
		dy, _ := toFloat(call.Args["dy"])
		if err := p.page.Mouse.Scroll(dx, dy, 1); err != nil {
			return "", model.NewPhaseError(model.ErrElementNotFound, "scroll failed", err)
		}
		return "scrolled", nil

	case "screenshot":
		return "screenshot requested", nil

	default:
		return "", model.NewPhaseError(model.ErrElementNotFound, "unknown tool: "+call.Name, nil)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringToKeys(s string) []input.Key {
	keys := make([]input.Key, 0, len(s))
	for _, r := range s {
		keys = append(keys, input.Key(r))
	}
	return keys
}

func namedKey(name string) (input.Key, bool) {
	switch strings.ToLower(name) {
	case "enter", "return":
		return input.Enter, true
	case "tab":
		return input.Tab, true
	case "escape", "esc":
		return input.Escape, true
	case "backspace":
		return input.Backspace, true
	default:
		return 0, false
	}
}

// extractTerminalPayload parses the model's "done" result for the
// {article_id, article_url, status} triple (§4.3 "Success extraction").
// Falls back to the zero value (caller then scrapes the editor URL).
func extractTerminalPayload(raw string) (articleID, articleURL, status string, ok bool) {
	jsonStr := extractLastJSONObject(raw)
	if jsonStr == "" {
		return "", "", "", false
	}
	var payload struct {
		ArticleID  string `json:"article_id"`
		ArticleURL string `json:"article_url"`
		Status     string `json:"status"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return "", "", "", false
	}
	return payload.ArticleID, payload.ArticleURL, payload.Status, true
}

// extractLastJSONObject finds the last balanced {...} substring in s,
// stripping markdown code fences first.
func extractLastJSONObject(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		if nl := strings.Index(trimmed, "\n"); nl != -1 {
			if fence := strings.LastIndex(trimmed, "```"); fence > nl {
				trimmed = strings.TrimSpace(trimmed[nl+1 : fence])
			}
		}
	}

	end := strings.LastIndex(trimmed, "}")
	if end == -1 {
		return ""
	}
	balance := 0
	for i := end; i >= 0; i-- {
		switch trimmed[i] {
		case '}':
			balance++
		case '{':
			balance--
		}
		if balance == 0 && trimmed[i] == '{' {
			candidate := trimmed[i : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate
			}
			return ""
		}
	}
	return ""
}
