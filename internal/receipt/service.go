package receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	financeErrors "github.com/expensio/expensio/internal/finance/errors"
)

const (
	// DefaultModelName is the multimodal model used for extraction.
	DefaultModelName = "gemini-2.0-flash"

	maxReceiptBytes = 10 << 20 // 10 MiB
)

// modelCaller issues one extraction request and returns the raw text
// response. Split out so parsing can be tested without the provider.
type modelCaller interface {
	generate(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
}

type geminiCaller struct {
	modelName string
}

// generate mirrors a single GenerateContent call with inline image data.
// The client reads GEMINI_API_KEY from the environment.
func (g *geminiCaller) generate(ctx context.Context, prompt, mimeType string, data []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return rawText, nil
}

// Service extracts structured expense fields from a receipt image. One
// outbound call per attempt: no retry, no mid-flight cancellation beyond
// the passed context.
type Service struct {
	caller modelCaller
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(logger zerolog.Logger) *Service {
	return &Service{
		caller: &geminiCaller{modelName: DefaultModelName},
		logger: logger,
		now:    time.Now,
	}
}

// Extract runs a single extraction attempt over an image payload.
func (s *Service) Extract(ctx context.Context, mimeType string, data []byte) (ExtractedReceipt, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return ExtractedReceipt{}, financeErrors.NewValidationErrorf("Unsupported file type %q, expected an image", mimeType)
	}
	if len(data) == 0 {
		return ExtractedReceipt{}, financeErrors.NewValidationError("Receipt image is empty")
	}
	if len(data) > maxReceiptBytes {
		return ExtractedReceipt{}, financeErrors.NewValidationError("Receipt image is too large, maximum size is 10 MB")
	}

	raw, err := s.caller.generate(ctx, buildReceiptPrompt(), mimeType, data)
	if err != nil {
		s.logger.Error().Err(err).Msg("receipt extraction request failed")
		return ExtractedReceipt{}, classifyProviderError(err)
	}

	extracted, err := parseReceiptResponse(raw, s.now())
	if err != nil {
		s.logger.Warn().Err(err).Msg("receipt response could not be parsed")
		return ExtractedReceipt{}, classifyProviderError(err)
	}

	s.logger.Info().Str("category", string(extracted.Category)).Msg("receipt extracted")
	return extracted, nil
}
