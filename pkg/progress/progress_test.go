package progress

import (
	"errors"
	"testing"
)

func TestReporterStepsDrainsInOrder(t *testing.T) {
	r := NewReporter()
	go func() {
		r.Report("fetch", nil)
		r.Report("discover", errors.New("boom"))
		r.Close()
	}()

	var got []Step
	for s := range r.Steps() {
		got = append(got, s)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(got))
	}
	if got[0].Label != "fetch" || got[0].Err != nil {
		t.Errorf("step 0 = %+v", got[0])
	}
	if got[1].Label != "discover" || got[1].Err == nil {
		t.Errorf("step 1 = %+v", got[1])
	}
}

func TestModelViewRendersCompletedSteps(t *testing.T) {
	m := model{history: []Step{{Label: "ok step"}, {Label: "bad step", Err: errors.New("x")}}}
	out := m.View()
	if out == "" {
		t.Fatal("expected non-empty view")
	}
}
