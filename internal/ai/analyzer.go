// Package ai fills product forms from a photo or a name. Gemini does the
// real analysis; when the key is missing or the upstream call fails, a
// deterministic keyword fallback produces a usable guess so the form never
// comes back empty.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type AnalyzeRequest struct {
	Image       string `json:"image"` // base64, optional
	ProductName string `json:"product_name"`
}

type ProductData struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
}

type AnalyzeResult struct {
	Success     bool        `json:"success"`
	ProductData ProductData `json:"product_data"`
	Warning     string      `json:"warning,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Analyze asks Gemini to classify the product. Any upstream problem
// degrades to the keyword fallback with a warning instead of failing the
// request.
func Analyze(ctx context.Context, apiKey string, req AnalyzeRequest) AnalyzeResult {
	if req.Image == "" && strings.TrimSpace(req.ProductName) == "" {
		return AnalyzeResult{Error: "provide an image or a product name"}
	}

	if apiKey == "" {
		return AnalyzeResult{
			Success:     true,
			ProductData: FallbackGuess(req.ProductName),
			Warning:     "AI credentials not configured, used keyword fallback",
		}
	}

	data, err := analyzeWithGemini(ctx, apiKey, req)
	if err != nil {
		return AnalyzeResult{
			Success:     true,
			ProductData: FallbackGuess(req.ProductName),
			Warning:     fmt.Sprintf("AI analysis failed (%v), used keyword fallback", err),
		}
	}
	return AnalyzeResult{Success: true, ProductData: *data}
}

func analyzeWithGemini(ctx context.Context, apiKey string, req AnalyzeRequest) (*ProductData, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	prompt := `Identify the retail product and reply with ONLY a JSON object:
{"name": "", "description": "", "category": "", "brand": "", "price": 0, "cost": 0}
Price and cost are estimates in local currency. No markdown, no extra text.`
	if req.ProductName != "" {
		prompt += "\nThe seller calls it: " + req.ProductName
	}

	parts := []genai.Part{genai.Text(prompt)}
	if req.Image != "" {
		raw, err := decodeImage(req.Image)
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		parts = append(parts, genai.ImageData("jpeg", raw))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, err
	}

	text := extractText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var data ProductData
	if err := json.Unmarshal([]byte(stripFences(text)), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	if data.Name == "" {
		data.Name = req.ProductName
	}
	return &data, nil
}

// decodeImage accepts raw base64 or a full data URL.
func decodeImage(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func extractText(resp *genai.GenerateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return ""
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
