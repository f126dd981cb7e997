package metrics

import "testing"

func TestCircuitStateString(t *testing.T) {
	tests := map[CircuitState]string{
		CircuitClosed:    "closed",
		CircuitOpen:      "open",
		CircuitHalfOpen:  "half-open",
		CircuitState(42): "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("CircuitState(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}

func TestNoOpCollectorSatisfiesInterface(t *testing.T) {
	var c Collector = NoOpCollector{}
	c.RecordRender("statement", 0, 0)
	c.RecordWarnings("UNMATCHED_CLOSE", 1)
	c.RecordCacheLookup(true)
	c.RecordStoreOp("memory", "get", true, 0)
	c.RecordCircuitState("redis", CircuitOpen)
}
