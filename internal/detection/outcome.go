package detection

// Selection is the image currently chosen for classification.
type Selection struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Kind says which of the three outcome shapes an Outcome holds.
type Kind int

const (
	// KindAbsent means no classification exists (nothing submitted yet,
	// or the selection was cleared).
	KindAbsent Kind = iota
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "absent"
	}
}

// Result is a successful classification. Confidence and the per-label
// probabilities are percentages in [0,100]; they are display-only and are
// never renormalized, so they need not sum to exactly 100.
type Result struct {
	// AnalysisID identifies one analysis run. Consumers use it to tell a
	// fresh result apart from a republished one.
	AnalysisID    string             `json:"analysisId"`
	Tumor         string             `json:"tumor"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Description   string             `json:"description"`
	FileName      string             `json:"fileName"`
}

// Outcome is the result (or absence/failure) of submitting a scan.
type Outcome struct {
	Kind    Kind    `json:"kind"`
	Result  *Result `json:"result,omitempty"`  // KindSuccess only
	Message string  `json:"message,omitempty"` // KindFailure only
}

func Absent() Outcome {
	return Outcome{Kind: KindAbsent}
}

func Succeeded(result *Result) Outcome {
	return Outcome{Kind: KindSuccess, Result: result}
}

func Failed(message string) Outcome {
	return Outcome{Kind: KindFailure, Message: message}
}
