package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncDispatchedIncrementsLabeledCounter(t *testing.T) {
	before := testutil.ToFloat64(dispatchedTotal.WithLabelValues("SMSG_TEST_OPCODE"))
	IncDispatched("SMSG_TEST_OPCODE")
	after := testutil.ToFloat64(dispatchedTotal.WithLabelValues("SMSG_TEST_OPCODE"))
	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, before=%v after=%v", before, after)
	}
}

func TestSetConnectedTogglesGauge(t *testing.T) {
	SetConnected(true)
	if v := testutil.ToFloat64(connectionState); v != 1 {
		t.Fatalf("expected gauge=1, got %v", v)
	}
	SetConnected(false)
	if v := testutil.ToFloat64(connectionState); v != 0 {
		t.Fatalf("expected gauge=0, got %v", v)
	}
}
