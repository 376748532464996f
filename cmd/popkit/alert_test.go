package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/model"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		outcome model.Outcome
		want    int
	}{
		{model.Confirmed(), exitConfirmed},
		{model.Cancelled(), exitCancelled},
		{model.Dismissed(model.DismissReasonEsc), exitDismissed},
		{model.Dismissed(model.DismissReasonTimer), exitDismissed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.outcome), "%+v", tt.outcome)
	}
}

func TestFormatOutcome(t *testing.T) {
	assert.Equal(t, "confirmed", formatOutcome(model.Confirmed()))
	assert.Equal(t, "cancelled", formatOutcome(model.Cancelled()))
	assert.Equal(t, "dismissed (backdrop)", formatOutcome(model.Dismissed(model.DismissReasonBackdrop)))
}

func TestBuildRequest(t *testing.T) {
	p := alert.DefaultPolicy()

	req := buildRequest(p, model.KindConfirmation, []string{"Delete?", "sure"}, "")
	assert.Equal(t, "Delete?", req.Title)
	assert.Equal(t, "Yes", req.ConfirmButtonText)
	assert.Equal(t, "No", req.CancelButtonText)

	req = buildRequest(p, model.KindCustom, []string{"Hi"}, "")
	assert.Equal(t, model.IconInfo, req.Icon)

	req = buildRequest(p, model.KindLoading, nil, "")
	assert.Equal(t, "Loading...", req.Title)

	req = buildRequest(p, model.KindWarning, []string{"careful"}, "")
	assert.Equal(t, "careful", req.Text)
	assert.Equal(t, 3000, req.Timer)
	assert.Equal(t, "40%", req.Width)
}

func TestArgOr(t *testing.T) {
	assert.Equal(t, "a", argOr([]string{"a"}, 0, "x"))
	assert.Equal(t, "x", argOr([]string{"a"}, 1, "x"))
}
