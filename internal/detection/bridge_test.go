package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeDeliversInPublishOrder(t *testing.T) {
	bridge := NewBridge()

	var first, second []Kind
	bridge.Subscribe(func(o Outcome) { first = append(first, o.Kind) })
	bridge.Subscribe(func(o Outcome) { second = append(second, o.Kind) })

	bridge.Publish(Failed("nope"))
	bridge.Publish(Succeeded(&Result{AnalysisID: "a", Tumor: "Glioma"}))
	bridge.Publish(Absent())

	want := []Kind{KindFailure, KindSuccess, KindAbsent}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
}

func TestBridgeRepublishIsLegal(t *testing.T) {
	bridge := NewBridge()

	var delivered []Outcome
	bridge.Subscribe(func(o Outcome) { delivered = append(delivered, o) })

	outcome := Succeeded(&Result{AnalysisID: "a", Tumor: "Glioma"})
	bridge.Publish(outcome)
	bridge.Publish(outcome)

	// the bridge itself never dedupes; that is the consumer's job
	assert.Len(t, delivered, 2)
}
