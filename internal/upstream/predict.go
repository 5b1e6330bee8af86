package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

const predictPath = "/api/predict/"

// PredictClient talks to the remote tumor classification endpoint.
type PredictClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewPredictClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PredictClient {
	return &PredictClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Prediction is the raw classification result as the server reports it.
// Confidence and probability values are percentages.
type Prediction struct {
	Tumor         string
	Confidence    float64
	Probabilities map[string]float64
}

type predictResponse struct {
	Tumor         string             `json:"tumor"`
	Confidence    *float64           `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

type predictErrorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Classify uploads the image and returns the server's prediction. Every
// failure comes back as an *APIError; nothing escapes unclassified.
func (c *PredictClient) Classify(ctx context.Context, imageData []byte, fileName, contentType string) (*Prediction, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(fileName)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+predictPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("submitting scan for classification",
		zap.String("fileName", fileName),
		zap.String("contentType", contentType),
		zap.Int("size", len(imageData)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("classification request failed", zap.Error(err))
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody predictErrorBody
		json.Unmarshal(respBody, &errBody)
		msg := errBody.Detail
		if msg == "" {
			msg = errBody.Error
		}
		c.logger.Warn("classification service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, newServerError(resp.StatusCode, msg)
	}

	var predResp predictResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return nil, newMalformedError("response is not valid JSON")
	}
	if predResp.Tumor == "" || predResp.Confidence == nil || predResp.Probabilities == nil {
		return nil, newMalformedError("response missing tumor, confidence or probabilities")
	}

	return &Prediction{
		Tumor:         predResp.Tumor,
		Confidence:    *predResp.Confidence,
		Probabilities: predResp.Probabilities,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
