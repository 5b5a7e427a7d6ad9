package pipeline

import (
	"testing"
	"time"
)

func TestStepLog_Finish(t *testing.T) {
	step := StepLog{Name: StepProfile, Status: StatusRunning, StartedAt: time.Now()}

	step.Finish(StatusOK, "rows=10 cols=2")

	if step.Status != StatusOK {
		t.Errorf("status = %s, want ok", step.Status)
	}
	if step.EndedAt == nil {
		t.Fatal("EndedAt not set")
	}
	if step.Detail != "rows=10 cols=2" {
		t.Errorf("detail = %q", step.Detail)
	}
	if step.Duration() < 0 {
		t.Errorf("duration negative: %v", step.Duration())
	}
}

func TestStepLog_DurationWhileRunning(t *testing.T) {
	step := StepLog{Name: StepRender, Status: StatusRunning, StartedAt: time.Now()}
	if step.Duration() != 0 {
		t.Error("running step should report zero duration")
	}
}

func TestResult_Succeeded(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   bool
	}{
		{"deck set", Result{DeckPath: "report_d1_light.html"}, true},
		{"error set", Result{Error: &RunError{Message: "boom"}}, false},
		{"neither set", Result{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Succeeded(); got != tt.want {
				t.Errorf("Succeeded() = %v, want %v", got, tt.want)
			}
		})
	}
}
