package chat

import (
	"fmt"
	"strconv"

	"neuroassist/internal/detection"
)

const noTumorLabel = "No Tumor"

// ComposeQuery derives the automatic question asked right after a fresh
// classification. Deterministic: the same result always yields the same
// text.
func ComposeQuery(result *detection.Result) string {
	if result.Tumor == noTumorLabel {
		return "The scan shows no tumor. What are some good brain health practices and when should someone consider getting a brain scan?"
	}
	return fmt.Sprintf(
		"The scan shows a %s with %s%% confidence. Please provide information about this type of brain tumor including common symptoms, treatment options, and prognosis.",
		result.Tumor, formatPercent(result.Confidence))
}

// formatPercent renders a percentage without trailing zeros, so 92.0
// prints as "92" and 92.5 as "92.5".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
