package parsing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GeminiOracle implements StructuringOracle against the Gemini API.
type GeminiOracle struct {
	apiKey string
	model  string
}

func NewGeminiOracle(apiKey, model string) *GeminiOracle {
	return &GeminiOracle{
		apiKey: apiKey,
		model:  model,
	}
}

func (o *GeminiOracle) Structure(ctx context.Context, req Request) (Result, error) {
	if o.apiKey == "" {
		return Result{}, ErrOracleUnavailable
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  o.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to create oracle client: %w", err)
	}

	parts := []*genai.Part{
		{Text: systemPrompt},
	}

	// Image-only statements yield almost no extracted text. Attach the
	// document itself instead of the useless text.
	if len(req.Document) > 0 && (Extraction{Text: req.Text}).Sparse() {
		log.Info().Str("filename", req.Filename).Msg("using document fallback for structuring")

		parts = append(parts,
			&genai.Part{Text: documentPrompt(req)},
			&genai.Part{
				InlineData: &genai.Blob{
					MIMEType: "application/pdf",
					Data:     req.Document,
				},
			},
		)
	} else {
		parts = append(parts, &genai.Part{Text: userPrompt(req)})
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: parts,
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.1),
		ResponseMIMEType: "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, o.model, contents, config)
	if err != nil {
		return Result{}, fmt.Errorf("oracle call failed: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return Result{Model: o.model, Raw: raw}, fmt.Errorf("%w: empty response", ErrMalformedOracleOutput)
	}

	statement, err := DecodeStatement(raw)
	if err != nil {
		return Result{Model: o.model, Raw: raw}, err
	}

	return Result{
		Statement: statement,
		Model:     o.model,
		Raw:       raw,
	}, nil
}

// DecodeStatement decodes an oracle answer into StatementData. Anything
// that does not contain a decodable JSON object is a malformed output
// error, failing the job.
func DecodeStatement(raw string) (StatementData, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return StatementData{}, fmt.Errorf("%w: no JSON object found", ErrMalformedOracleOutput)
	}

	var statement StatementData
	if err := json.Unmarshal([]byte(payload), &statement); err != nil {
		return StatementData{}, fmt.Errorf("%w: %s", ErrMalformedOracleOutput, err)
	}

	return statement, nil
}
