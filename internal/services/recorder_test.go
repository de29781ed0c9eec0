package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordParsesValidOutput(t *testing.T) {
	invoker := &fakeInvoker{replies: []invokerReply{{data: `{
		"one_line": "Skipped nap, meltdown before dinner",
		"events": [{"type": "sleep", "description": "refused the afternoon nap"}],
		"tags": ["sleep", "tantrum"],
		"missing_info": []
	}`}}}
	svc := NewRecorderService(invoker, testLogger())

	age := "2y3m"
	out, status := svc.Record(context.Background(), RecorderInput{
		RawText:   "no nap today, big meltdown at 6pm",
		EntryDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ChildAge:  &age,
	})
	if !status.Success {
		t.Fatalf("status = %+v", status)
	}
	if status.PromptVersion != "v-test" {
		t.Fatalf("prompt version = %q", status.PromptVersion)
	}
	if out.OneLine != "Skipped nap, meltdown before dinner" {
		t.Fatalf("one_line = %q", out.OneLine)
	}
	if invoker.lastAgent != AgentRecorder {
		t.Fatalf("agent = %q", invoker.lastAgent)
	}
	if invoker.lastRetries != stageMaxRetries {
		t.Fatalf("retries = %d, want %d", invoker.lastRetries, stageMaxRetries)
	}
}

func TestRecordFailsValidationOnBadEnum(t *testing.T) {
	invoker := &fakeInvoker{replies: []invokerReply{{data: `{
		"one_line": "ok",
		"events": [{"type": "nonsense", "description": "x"}],
		"tags": [], "missing_info": []
	}`}}}
	svc := NewRecorderService(invoker, testLogger())

	out, status := svc.Record(context.Background(), RecorderInput{RawText: "x", EntryDate: time.Now()})
	if status.Success || out != nil {
		t.Fatalf("expected validation failure, got %+v", status)
	}
	if !strings.Contains(status.Error, "validation") {
		t.Fatalf("error = %q", status.Error)
	}
	// Validation failures still carry the prompt version that produced them.
	if status.PromptVersion != "v-test" {
		t.Fatalf("prompt version = %q", status.PromptVersion)
	}
}

func TestRecordFailsOnInvokerError(t *testing.T) {
	invoker := &fakeInvoker{replies: []invokerReply{{err: errors.New("model down")}}}
	svc := NewRecorderService(invoker, testLogger())

	out, status := svc.Record(context.Background(), RecorderInput{RawText: "x", EntryDate: time.Now()})
	if status.Success || out != nil {
		t.Fatalf("expected failure, got %+v", status)
	}
}

func TestBuildRecorderMessage(t *testing.T) {
	age := "18m"
	msg := buildRecorderMessage(RecorderInput{
		RawText:   "slept through the night",
		EntryDate: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		ChildAge:  &age,
	})
	for _, want := range []string{"2026-02-14", "18m", "slept through the night"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	// Age section is omitted when unknown.
	msg = buildRecorderMessage(RecorderInput{RawText: "x", EntryDate: time.Now()})
	if strings.Contains(msg, "Child age") {
		t.Fatalf("unexpected age section:\n%s", msg)
	}
}
