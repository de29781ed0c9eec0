package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minachen/sproutlog-backend/internal/logger"
	"github.com/minachen/sproutlog-backend/internal/repos"
	"github.com/minachen/sproutlog-backend/internal/types"
)

func testLogger() *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		panic(err)
	}
	return log
}

// scriptedClient returns canned replies in order; the last reply repeats.
type chatReply struct {
	content string
	err     error
}

type scriptedClient struct {
	replies      []chatReply
	calls        int
	lastSystem   string
	lastUser     string
	lastHistory  []ChatTurn
	lastSettings CallSettings
}

func (s *scriptedClient) Chat(_ context.Context, system string, history []ChatTurn, user string, settings CallSettings) (*ChatResult, error) {
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	s.lastHistory = history
	s.lastSettings = settings
	r := s.replies[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &ChatResult{Content: r.content, Usage: &TokenUsage{TotalTokens: 10}}, nil
}

// staticRegistry resolves every agent to the same prompt.
type staticRegistry struct {
	prompt   *ResolvedPrompt
	err      error
	resolves int
}

func (r *staticRegistry) Resolve(context.Context, string) (*ResolvedPrompt, error) {
	r.resolves++
	if r.err != nil {
		return nil, r.err
	}
	return r.prompt, nil
}

func (r *staticRegistry) CreateVersion(context.Context, CreatePromptVersionInput) (*types.AgentPrompt, error) {
	return nil, nil
}
func (r *staticRegistry) EnableVersion(context.Context, string, string) error { return nil }
func (r *staticRegistry) ListVersions(context.Context, string) ([]*types.AgentPrompt, error) {
	return nil, nil
}
func (r *staticRegistry) ClearCache(string) {}

// memPromptRepo keeps AgentPrompt rows in memory and upholds the
// one-enabled-per-agent invariant the way the real repo does.
type memPromptRepo struct {
	rows    []*types.AgentPrompt
	findErr error
	clock   time.Time
}

func (m *memPromptRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memPromptRepo) CreateVersion(_ context.Context, prompt *types.AgentPrompt, enableImmediately bool) (*types.AgentPrompt, error) {
	if enableImmediately {
		for _, row := range m.rows {
			if row.AgentName == prompt.AgentName {
				row.Enabled = false
			}
		}
	}
	prompt.ID = uuid.New()
	prompt.Enabled = enableImmediately
	prompt.CreatedAt = m.tick()
	m.rows = append(m.rows, prompt)
	return prompt, nil
}

func (m *memPromptRepo) EnableVersion(_ context.Context, agentName, version string) error {
	var target *types.AgentPrompt
	for _, row := range m.rows {
		if row.AgentName == agentName && row.Version == version {
			target = row
		}
	}
	if target == nil {
		return repos.ErrNotFound
	}
	for _, row := range m.rows {
		if row.AgentName == agentName {
			row.Enabled = false
		}
	}
	target.Enabled = true
	return nil
}

func (m *memPromptRepo) FindEnabled(_ context.Context, agentName string) (*types.AgentPrompt, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var newest *types.AgentPrompt
	for _, row := range m.rows {
		if row.AgentName != agentName || !row.Enabled {
			continue
		}
		if newest == nil || row.CreatedAt.After(newest.CreatedAt) {
			newest = row
		}
	}
	if newest == nil {
		return nil, repos.ErrNotFound
	}
	return newest, nil
}

func (m *memPromptRepo) ListByAgent(_ context.Context, agentName string) ([]*types.AgentPrompt, error) {
	var out []*types.AgentPrompt
	for _, row := range m.rows {
		if row.AgentName == agentName {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// memCallLog captures AI call audit rows.
type memCallLog struct {
	rows []*types.AICallLog
}

func (m *memCallLog) Create(_ context.Context, _ *gorm.DB, row *types.AICallLog) (*types.AICallLog, error) {
	m.rows = append(m.rows, row)
	return row, nil
}

// fakeEntryRepo serves scripted recent/tagged sets; unimplemented methods
// panic via the embedded nil interface.
type taggedCall struct {
	tags    []string
	exclude []uuid.UUID
	limit   int
}

type fakeEntryRepo struct {
	repos.EntryRepo
	recent      []*types.Entry
	tagged      []*types.Entry
	recentErr   error
	taggedErr   error
	taggedCalls []taggedCall
	created     []*types.Entry
	createErr   error
}

func (f *fakeEntryRepo) Create(_ context.Context, _ *gorm.DB, entry *types.Entry) (*types.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.created = append(f.created, entry)
	return entry, nil
}

func (f *fakeEntryRepo) ListRecent(_ context.Context, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	excluded := make(map[uuid.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	var out []*types.Entry
	for _, entry := range f.recent {
		if _, skip := excluded[entry.ID]; skip {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) ListTagged(_ context.Context, tags []string, excludeIDs []uuid.UUID, limit int) ([]*types.Entry, error) {
	f.taggedCalls = append(f.taggedCalls, taggedCall{tags: tags, exclude: excludeIDs, limit: limit})
	if f.taggedErr != nil {
		return nil, f.taggedErr
	}
	excluded := make(map[uuid.UUID]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	var out []*types.Entry
	for _, entry := range f.tagged {
		if _, skip := excluded[entry.ID]; skip {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeStrategyRepo struct {
	repos.StrategyRepo
	active     []*types.Strategy
	lastCats   []string
	activeErr  error
}

func (f *fakeStrategyRepo) ListActiveByCategories(_ context.Context, categories []string, limit int) ([]*types.Strategy, error) {
	f.lastCats = categories
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	if len(f.active) > limit {
		return f.active[:limit], nil
	}
	return f.active, nil
}

// entryWithTags builds an entry whose fact card carries the given tags.
// daysAgo controls recency; smaller is newer.
func entryWithTags(daysAgo int, tags ...string) *types.Entry {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	raw, _ := json.Marshal(tags)
	return &types.Entry{
		ID:        uuid.New(),
		RawText:   "entry from " + time.Duration(daysAgo).String(),
		EntryDate: base.AddDate(0, 0, -daysAgo),
		FactCard: &types.FactCard{
			ID:      uuid.New(),
			OneLine: "summary",
			Tags:    raw,
		},
	}
}

// fakeInvoker scripts agent call results per call index.
type invokerReply struct {
	data string
	err  error
}

type fakeInvoker struct {
	replies      []invokerReply
	calls        int
	lastAgent    string
	lastMessage  string
	lastRetries  int
}

func (f *fakeInvoker) invoke(agentName, userMessage string) (*AgentCallResult, error) {
	idx := f.calls
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	f.calls++
	f.lastAgent = agentName
	f.lastMessage = userMessage
	r := f.replies[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &AgentCallResult{
		Data:          json.RawMessage(r.data),
		PromptVersion: "v-test",
		Usage:         &TokenUsage{TotalTokens: 5},
	}, nil
}

func (f *fakeInvoker) Invoke(_ context.Context, agentName, userMessage string, _ *AgentConfig) (*AgentCallResult, error) {
	return f.invoke(agentName, userMessage)
}

func (f *fakeInvoker) InvokeWithRetry(_ context.Context, agentName, userMessage string, maxRetries int, _ *AgentConfig) (*AgentCallResult, error) {
	f.lastRetries = maxRetries
	return f.invoke(agentName, userMessage)
}

func (f *fakeInvoker) ConfigFor(agentName string) AgentConfig {
	return defaultAgentConfigs[agentName]
}

// memQuestionRepo backs the stage machine tests.
type memQuestionRepo struct {
	repos.QuestionRepo
	questions map[uuid.UUID]*types.ParentingQuestion
	updates   []map[string]interface{}
	updateErr error
}

func newMemQuestionRepo() *memQuestionRepo {
	return &memQuestionRepo{questions: make(map[uuid.UUID]*types.ParentingQuestion)}
}

func (m *memQuestionRepo) add(stage string) *types.ParentingQuestion {
	q := &types.ParentingQuestion{
		ID:       uuid.New(),
		Question: "why does bedtime fall apart",
		Stage:    stage,
	}
	m.questions[q.ID] = q
	return q
}

func (m *memQuestionRepo) Create(_ context.Context, _ *gorm.DB, q *types.ParentingQuestion) (*types.ParentingQuestion, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	m.questions[q.ID] = q
	return q, nil
}

func (m *memQuestionRepo) GetByID(_ context.Context, id uuid.UUID) (*types.ParentingQuestion, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return q, nil
}

func (m *memQuestionRepo) GetDetail(_ context.Context, id uuid.UUID) (*types.ParentingQuestion, error) {
	return m.GetByID(nil, id)
}

func (m *memQuestionRepo) MaxDisplayOrder(_ context.Context) (int, error) {
	max := 0
	for _, q := range m.questions {
		if q.DisplayOrder > max {
			max = q.DisplayOrder
		}
	}
	return max, nil
}

func (m *memQuestionRepo) Update(_ context.Context, _ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	q, ok := m.questions[id]
	if !ok {
		return repos.ErrNotFound
	}
	m.updates = append(m.updates, fields)
	if stage, ok := fields["stage"].(string); ok {
		q.Stage = stage
	}
	if text, ok := fields["question"].(string); ok {
		q.Question = text
	}
	if order, ok := fields["display_order"].(int); ok {
		q.DisplayOrder = order
	}
	return nil
}

type memObservationRepo struct {
	repos.QuestionObservationRepo
	observations []*types.QuestionObservation
	countErr     error
	listErr      error
}

func (m *memObservationRepo) Create(_ context.Context, _ *gorm.DB, obs *types.QuestionObservation) (*types.QuestionObservation, error) {
	obs.ID = uuid.New()
	obs.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(len(m.observations)) * time.Hour)
	m.observations = append(m.observations, obs)
	return obs, nil
}

func (m *memObservationRepo) CountByQuestion(_ context.Context, questionID uuid.UUID) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	var n int64
	for _, obs := range m.observations {
		if obs.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

func (m *memObservationRepo) ListRecent(_ context.Context, questionID uuid.UUID, limit int) ([]*types.QuestionObservation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*types.QuestionObservation
	for i := len(m.observations) - 1; i >= 0 && len(out) < limit; i-- {
		if m.observations[i].QuestionID == questionID {
			out = append(out, m.observations[i])
		}
	}
	return out, nil
}

type memDiscussionRepo struct {
	repos.QuestionDiscussionRepo
	messages []*types.QuestionDiscussion
}

func (m *memDiscussionRepo) Create(_ context.Context, _ *gorm.DB, msg *types.QuestionDiscussion) (*types.QuestionDiscussion, error) {
	msg.ID = uuid.New()
	m.messages = append(m.messages, msg)
	return msg, nil
}

type emptyProfileRepo struct{}

func (emptyProfileRepo) First(context.Context) (*types.ChildProfile, error) {
	return nil, repos.ErrNotFound
}

// fake pipeline stages for orchestrator tests.
type fakeRecorder struct {
	out    *types.FactCardOutput
	status StageStatus
	lastIn RecorderInput
}

func (f *fakeRecorder) Record(_ context.Context, in RecorderInput) (*types.FactCardOutput, StageStatus) {
	f.lastIn = in
	return f.out, f.status
}

type fakeRetrieval struct {
	ctx    *types.RetrievalContext
	err    error
	calls  int
	lastID uuid.UUID
}

func (f *fakeRetrieval) Retrieve(_ context.Context, _ *types.FactCardOutput, currentEntryID uuid.UUID, _ int) (*types.RetrievalContext, error) {
	f.calls++
	f.lastID = currentEntryID
	if f.err != nil {
		return nil, f.err
	}
	return f.ctx, nil
}

type fakeExpert struct {
	out     *types.ExpertOutput
	status  StageStatus
	lastIn  ExpertInput
	calls   int
}

func (f *fakeExpert) Analyze(_ context.Context, in ExpertInput) (*types.ExpertOutput, StageStatus) {
	f.calls++
	f.lastIn = in
	return f.out, f.status
}

type memFactCardRepo struct {
	repos.FactCardRepo
	created   []*types.FactCard
	createErr error
}

func (m *memFactCardRepo) Create(_ context.Context, _ *gorm.DB, card *types.FactCard) (*types.FactCard, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	card.ID = uuid.New()
	m.created = append(m.created, card)
	return card, nil
}

type memAnalysisRepo struct {
	repos.ExpertAnalysisRepo
	created   []*types.ExpertAnalysis
	createErr error
}

func (m *memAnalysisRepo) Create(_ context.Context, _ *gorm.DB, analysis *types.ExpertAnalysis) (*types.ExpertAnalysis, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	analysis.ID = uuid.New()
	m.created = append(m.created, analysis)
	return analysis, nil
}
