package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Extraction is the tagged outcome of pulling generated text out of a model
// response. Recognized carries cleaned text; otherwise Raw preserves the body
// untouched so callers can log or surface it.
type Extraction struct {
	Recognized bool
	Text       string
	Raw        string
}

// generateResponse is the documented candidate-based response shape.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var (
	leadingFence  = regexp.MustCompile("(?i)^\\s*```(?:\\w+)?\\s*")
	trailingFence = regexp.MustCompile("(?i)\\s*```\\s*$")
)

// ExtractText pulls the generated text out of a response body. The API has
// shipped several shapes; in order it tries:
//  1. the documented candidates/parts array,
//  2. candidates[0].content as a plain string or a {text} object,
//  3. a top-level outputText string,
//  4. a bare JSON string body.
// Anything else comes back tagged Unrecognized with the raw body preserved.
func ExtractText(body []byte) Extraction {
	raw := string(body)

	var typed generateResponse
	if err := json.Unmarshal(body, &typed); err == nil && len(typed.Candidates) > 0 {
		var b strings.Builder
		for _, p := range typed.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return recognized(b.String(), raw)
		}
	}

	if !gjson.ValidBytes(body) {
		return Extraction{Raw: raw}
	}
	parsed := gjson.ParseBytes(body)

	if c := parsed.Get("candidates.0.content"); c.Exists() {
		if c.Type == gjson.String {
			return recognized(c.String(), raw)
		}
		if text := c.Get("text"); text.Type == gjson.String {
			return recognized(text.String(), raw)
		}
	}

	if out := parsed.Get("outputText"); out.Type == gjson.String {
		return recognized(out.String(), raw)
	}

	if parsed.Type == gjson.String {
		return recognized(parsed.String(), raw)
	}

	return Extraction{Raw: raw}
}

func recognized(text, raw string) Extraction {
	return Extraction{Recognized: true, Text: StripFences(text), Raw: raw}
}

// StripFences removes a surrounding Markdown code fence (``` or ```json) from
// generated text.
func StripFences(s string) string {
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
