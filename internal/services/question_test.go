package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/minachen/sproutlog-backend/internal/types"
)

type questionFixture struct {
	questionRepo *memQuestionRepo
	obsRepo      *memObservationRepo
	client       *scriptedClient
	svc          QuestionService
}

func newQuestionFixture(replies ...chatReply) *questionFixture {
	f := &questionFixture{
		questionRepo: newMemQuestionRepo(),
		obsRepo:      &memObservationRepo{},
		client:       &scriptedClient{replies: replies},
	}
	if len(replies) == 0 {
		f.client.replies = []chatReply{{content: "ok"}}
	}
	registry := &staticRegistry{prompt: &ResolvedPrompt{
		AgentName: AgentExpert, Version: "v1", SystemPrompt: "expert", Source: PromptSourceDefault,
	}}
	invoker := &fakeInvoker{replies: []invokerReply{{data: "{}"}}}
	f.svc = NewQuestionService(
		f.questionRepo, f.obsRepo, &memDiscussionRepo{}, &emptyProfileRepo{},
		registry, f.client, invoker, testLogger(),
	)
	return f
}

func (f *questionFixture) observe(t *testing.T, questionID uuid.UUID, content string) *AddObservationResult {
	t.Helper()
	result, err := f.svc.AddObservation(context.Background(), questionID, content, nil)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestCreateQuestionStartsObserving(t *testing.T) {
	f := newQuestionFixture()
	existing := f.questionRepo.add(types.QuestionStageObserving)
	existing.DisplayOrder = 4

	q, err := f.svc.Create(context.Background(), "  how to handle bedtime battles  ")
	if err != nil {
		t.Fatal(err)
	}
	if q.Stage != types.QuestionStageObserving {
		t.Fatalf("stage = %q", q.Stage)
	}
	if q.DisplayOrder != 5 {
		t.Fatalf("display order = %d, want 5", q.DisplayOrder)
	}
	if q.Question != "how to handle bedtime battles" {
		t.Fatalf("question = %q", q.Question)
	}
}

func TestObservationBelowThresholdNeverTransitions(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	// Keywords present, but only two observations.
	r1 := f.observe(t, q.ID, "we tried an earlier bath")
	r2 := f.observe(t, q.ID, "tried again, slightly better")
	if r1.StageUpdate != "" || r2.StageUpdate != "" {
		t.Fatalf("transitioned below threshold: %q %q", r1.StageUpdate, r2.StageUpdate)
	}
	if q.Stage != types.QuestionStageObserving {
		t.Fatalf("stage = %q", q.Stage)
	}
}

func TestThirdObservationWithKeywordTransitions(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	f.observe(t, q.ID, "screamed at bedtime again")
	f.observe(t, q.ID, "took an hour to settle")
	result := f.observe(t, q.ID, "We TRIED dimming the lights at 7")

	if result.StageUpdate != types.QuestionStageExperimenting {
		t.Fatalf("stage update = %q", result.StageUpdate)
	}
	if q.Stage != types.QuestionStageExperimenting {
		t.Fatalf("stage = %q", q.Stage)
	}
}

func TestKeywordInRecentHistoryTransitions(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	f.observe(t, q.ID, "attempted a no-screens rule after dinner")
	f.observe(t, q.ID, "bad night")
	result := f.observe(t, q.ID, "another bad night")

	// The new observation has no keyword, but one of the last five does.
	if result.StageUpdate != types.QuestionStageExperimenting {
		t.Fatalf("stage update = %q", result.StageUpdate)
	}
}

func TestNoKeywordAnywhereStaysObserving(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	for _, content := range []string{"bad night", "worse night", "terrible night", "ok night"} {
		if result := f.observe(t, q.ID, content); result.StageUpdate != "" {
			t.Fatalf("unexpected transition on %q", content)
		}
	}
	if q.Stage != types.QuestionStageObserving {
		t.Fatalf("stage = %q", q.Stage)
	}
}

func TestNonObservingStageNeverAutoTransitions(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageInternalized)

	for i := 0; i < 4; i++ {
		if result := f.observe(t, q.ID, "we tried yet another experiment"); result.StageUpdate != "" {
			t.Fatal("internalized question must not auto-transition")
		}
	}
	if q.Stage != types.QuestionStageInternalized {
		t.Fatalf("stage = %q", q.Stage)
	}
}

func TestObservationSourceTracksEntryLink(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	entryID := uuid.New()
	result, err := f.svc.AddObservation(context.Background(), q.ID, "linked to an entry", &entryID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Observation.Source != types.ObservationSourceEntry {
		t.Fatalf("source = %q", result.Observation.Source)
	}

	manual := f.observe(t, q.ID, "typed by hand")
	if manual.Observation.Source != types.ObservationSourceManual {
		t.Fatalf("source = %q", manual.Observation.Source)
	}
}

func TestAddObservationUnknownQuestion(t *testing.T) {
	f := newQuestionFixture()
	if _, err := f.svc.AddObservation(context.Background(), uuid.New(), "content", nil); err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestUpdateRejectsUnknownStage(t *testing.T) {
	f := newQuestionFixture()
	q := f.questionRepo.add(types.QuestionStageObserving)

	bogus := "snoozing"
	if _, err := f.svc.Update(context.Background(), q.ID, UpdateQuestionInput{Stage: &bogus}); err == nil {
		t.Fatal("expected error for unknown stage")
	}

	valid := types.QuestionStageInternalized
	updated, err := f.svc.Update(context.Background(), q.ID, UpdateQuestionInput{Stage: &valid})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Stage != types.QuestionStageInternalized {
		t.Fatalf("stage = %q", updated.Stage)
	}
}

func TestDiscussPersistsBothTurns(t *testing.T) {
	f := newQuestionFixture(chatReply{content: "Conclusion: keep the earlier wind-down routine."})
	q := f.questionRepo.add(types.QuestionStageExperimenting)

	result, err := f.svc.Discuss(context.Background(), q.ID, "is the new routine working?")
	if err != nil {
		t.Fatal(err)
	}
	if result.UserMessage.Role != "user" || result.AssistantMessage.Role != "assistant" {
		t.Fatalf("roles = %q/%q", result.UserMessage.Role, result.AssistantMessage.Role)
	}
	if result.SuggestedConclusion == nil || *result.SuggestedConclusion != "keep the earlier wind-down routine." {
		t.Fatalf("suggestion = %v", result.SuggestedConclusion)
	}
	if f.client.lastSystem == "" || f.client.lastUser != "is the new routine working?" {
		t.Fatal("chat call not built from the question context")
	}
}

func TestExtractConclusionSuggestion(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"labeled conclusion", "Some analysis.\nConclusion: stick with the routine", "stick with the routine"},
		{"suggestion phrasing", "You could try a visual bedtime chart for a week.", "a visual bedtime chart for a week."},
		{"no match", "Interesting, tell me more about the evenings.", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractConclusionSuggestion(tc.reply)
			if tc.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("got %v, want %q", got, tc.want)
			}
		})
	}
}
