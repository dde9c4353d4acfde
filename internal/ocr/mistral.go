package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	mistralOCREndpoint  = "https://api.mistral.ai/v1/ocr"
	defaultMistralModel = "pixtral-large-latest"
)

// MistralOCR extracts text from PDFs using the Mistral OCR API. Calls are
// rate limited so batch runs stay inside the API quota.
type MistralOCR struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	retry    retryPolicy
}

// NewMistralOCR creates a MistralOCR extractor. Empty model uses the default;
// requestsPerMinute <= 0 disables rate limiting.
func NewMistralOCR(apiKey, model string, requestsPerMinute int) *MistralOCR {
	if model == "" {
		model = defaultMistralModel
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &MistralOCR{
		apiKey:   apiKey,
		model:    model,
		endpoint: mistralOCREndpoint,
		client:   &http.Client{},
		limiter:  rate.NewLimiter(limit, 1),
		retry:    defaultRetryPolicy(),
	}
}

type mistralOCRRequest struct {
	Model    string             `json:"model"`
	Document mistralOCRDocument `json:"document"`
}

type mistralOCRDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type mistralOCRResponse struct {
	Pages []mistralOCRPage `json:"pages"`
}

type mistralOCRPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Extract reads a PDF file, sends it to Mistral OCR, and returns the
// page-marked document.
func (m *MistralOCR) Extract(ctx context.Context, pdfPath string) (Document, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return Document{}, eris.Wrapf(err, "ocr: read PDF %s", pdfPath)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	dataURL := "data:application/pdf;base64," + encoded

	reqBody := mistralOCRRequest{
		Model: m.model,
		Document: mistralOCRDocument{
			Type:        "document_url",
			DocumentURL: dataURL,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Document{}, eris.Wrap(err, "ocr: marshal mistral request")
	}

	ocrResp, err := withRetry(ctx, m.retry, "mistral ocr", func(ctx context.Context) (mistralOCRResponse, error) {
		return m.call(ctx, bodyBytes)
	})
	if err != nil {
		return Document{}, err
	}

	pages := make([]string, 0, len(ocrResp.Pages))
	for _, page := range ocrResp.Pages {
		pages = append(pages, page.Markdown)
	}
	if len(pages) == 0 {
		return Document{}, nil
	}
	return NewDocument(pages), nil
}

// call performs one rate-limited request against the OCR endpoint.
func (m *MistralOCR) call(ctx context.Context, body []byte) (mistralOCRResponse, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return mistralOCRResponse{}, eris.Wrap(err, "ocr: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return mistralOCRResponse{}, eris.Wrap(err, "ocr: create mistral request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return mistralOCRResponse{}, eris.Wrap(err, "ocr: mistral API call")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return mistralOCRResponse{}, eris.Wrap(err, "ocr: read mistral response")
	}

	if resp.StatusCode != http.StatusOK {
		return mistralOCRResponse{}, eris.Wrapf(&apiStatusError{status: resp.StatusCode, body: string(respBody)},
			"ocr: mistral API returned %d", resp.StatusCode)
	}

	var ocrResp mistralOCRResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return mistralOCRResponse{}, eris.Wrap(err, "ocr: unmarshal mistral response")
	}
	return ocrResp, nil
}
