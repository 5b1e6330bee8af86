package detection

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neuroassist/internal/upstream"
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// Classifier is the remote classification call the controller depends on.
// Implemented by *upstream.PredictClient.
type Classifier interface {
	Classify(ctx context.Context, imageData []byte, fileName, contentType string) (*upstream.Prediction, error)
}

// Controller validates and submits selections and owns the current
// Outcome. Submissions are numbered; when several are in flight the last
// one issued wins and superseded results are never published.
type Controller struct {
	classifier Classifier
	bridge     *Bridge
	logger     *zap.Logger

	mu      sync.Mutex
	seq     int64
	current Outcome
}

func NewController(classifier Classifier, bridge *Bridge, logger *zap.Logger) *Controller {
	return &Controller{
		classifier: classifier,
		bridge:     bridge,
		logger:     logger,
		current:    Absent(),
	}
}

// Current returns the latest published outcome.
func (c *Controller) Current() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Submit validates the selection and, if it passes, sends exactly one
// classification request. The returned outcome is also published to the
// bridge unless a newer submission superseded this one while it was in
// flight. Failures never escape as errors; they come back as KindFailure.
func (c *Controller) Submit(ctx context.Context, sel Selection) Outcome {
	if apiErr := ValidateSelection(sel); apiErr != nil {
		c.logger.Info("selection rejected before submit", zap.String("reason", apiErr.Message))
		outcome := Failed(apiErr.UserMessage())
		c.mu.Lock()
		c.seq++
		c.current = outcome
		c.bridge.Publish(outcome)
		c.mu.Unlock()
		return outcome
	}

	c.mu.Lock()
	c.seq++
	mySeq := c.seq
	c.mu.Unlock()

	prediction, err := c.classifier.Classify(ctx, sel.Data, sel.FileName, sel.ContentType)

	var outcome Outcome
	if err != nil {
		apiErr := upstream.Classify(err)
		c.logger.Warn("classification failed",
			zap.String("kind", apiErr.Kind.String()),
			zap.Error(err))
		outcome = Failed(apiErr.UserMessage())
	} else {
		probs := prediction.Probabilities
		if probs == nil {
			probs = make(map[string]float64, 1)
		}
		if _, ok := probs[prediction.Tumor]; !ok {
			probs[prediction.Tumor] = prediction.Confidence
		}
		outcome = Succeeded(&Result{
			AnalysisID:    uuid.New().String(),
			Tumor:         prediction.Tumor,
			Confidence:    prediction.Confidence,
			Probabilities: probs,
			Description:   DescriptionFor(prediction.Tumor),
			FileName:      sel.FileName,
		})
		c.logger.Info("scan classified",
			zap.String("tumor", prediction.Tumor),
			zap.Float64("confidence", prediction.Confidence))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if mySeq != c.seq {
		// A newer submit or clear happened while this one was in flight.
		c.logger.Debug("discarding superseded classification result", zap.Int64("seq", mySeq))
		return outcome
	}
	c.current = outcome
	c.bridge.Publish(outcome)
	return outcome
}

// Clear drops the current selection's outcome and publishes Absent. Any
// in-flight submission is superseded.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.current = Absent()
	c.bridge.Publish(c.current)
}

// ValidateSelection checks the local preconditions: a non-empty payload
// with an allow-listed media type. Size limits are transport policy and
// are enforced at the gateway, not here.
func ValidateSelection(sel Selection) *upstream.APIError {
	if len(sel.Data) == 0 {
		return upstream.NewValidationError("Please select an image file")
	}
	if !allowedTypes[sel.ContentType] {
		return upstream.NewValidationError("Only JPG/PNG images are supported")
	}
	return nil
}
