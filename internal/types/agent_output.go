package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Model output shapes. These are parsed from untrusted model JSON and
// validated before anything touches the database, so the Validate methods
// are strict about enum membership.

const OneLineMaxLen = 100

var EventTypes = []string{
	"behavior", "emotion", "milestone", "health", "social",
	"cognitive", "language", "motor", "sleep", "feeding", "other",
}

var EventEmotions = []string{"positive", "negative", "neutral", "mixed"}

var AgeBuckets = []string{"0-6m", "6-12m", "1-2y", "2-3y", "3-4y", "4-5y", "5-6y"}

var SuggestionCategories = []string{"action", "observation", "resource", "caution"}

var SuggestionPriorities = []string{"high", "medium", "low"}

type Event struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Emotion     string `json:"emotion,omitempty"`
	Context     string `json:"context,omitempty"`
}

type FactCardOutput struct {
	OneLine     string   `json:"one_line"`
	Events      []Event  `json:"events"`
	Tags        []string `json:"tags"`
	MissingInfo []string `json:"missing_info"`
	AgeBucket   string   `json:"age_bucket,omitempty"`
}

func (f *FactCardOutput) Validate() error {
	if strings.TrimSpace(f.OneLine) == "" {
		return fmt.Errorf("one_line is required")
	}
	if len([]rune(f.OneLine)) > OneLineMaxLen {
		return fmt.Errorf("one_line exceeds %d characters", OneLineMaxLen)
	}
	for i, ev := range f.Events {
		if !contains(EventTypes, ev.Type) {
			return fmt.Errorf("events[%d]: unknown type %q", i, ev.Type)
		}
		if strings.TrimSpace(ev.Description) == "" {
			return fmt.Errorf("events[%d]: description is required", i)
		}
		if ev.Emotion != "" && !contains(EventEmotions, ev.Emotion) {
			return fmt.Errorf("events[%d]: unknown emotion %q", i, ev.Emotion)
		}
	}
	if f.AgeBucket != "" && !contains(AgeBuckets, f.AgeBucket) {
		return fmt.Errorf("unknown age_bucket %q", f.AgeBucket)
	}
	return nil
}

type Suggestion struct {
	Category string `json:"category"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

type Pattern struct {
	Pattern  string   `json:"pattern"`
	Evidence []string `json:"evidence"`
}

type ExpertOutput struct {
	Interpretation string       `json:"interpretation"`
	Suggestions    []Suggestion `json:"suggestions"`
	Patterns       []Pattern    `json:"patterns,omitempty"`
	RiskFlags      []string     `json:"risk_flags"`
}

func (e *ExpertOutput) Validate() error {
	if strings.TrimSpace(e.Interpretation) == "" {
		return fmt.Errorf("interpretation is required")
	}
	for i, s := range e.Suggestions {
		if !contains(SuggestionCategories, s.Category) {
			return fmt.Errorf("suggestions[%d]: unknown category %q", i, s.Category)
		}
		if strings.TrimSpace(s.Content) == "" {
			return fmt.Errorf("suggestions[%d]: content is required", i)
		}
		if !contains(SuggestionPriorities, s.Priority) {
			return fmt.Errorf("suggestions[%d]: unknown priority %q", i, s.Priority)
		}
	}
	for i, p := range e.Patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			return fmt.Errorf("patterns[%d]: pattern is required", i)
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// EntryWithAnalysis is the composed read view the pipeline returns and the
// retrieval engine hands to the expert stage.
type EntryWithAnalysis struct {
	ID        uuid.UUID         `json:"id"`
	RawText   string            `json:"raw_text"`
	EntryDate time.Time         `json:"entry_date"`
	ChildAge  *string           `json:"child_age,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	FactCard  *FactCardWithMeta `json:"fact_card"`
}

type FactCardWithMeta struct {
	ID             uuid.UUID     `json:"id"`
	OneLine        string        `json:"one_line"`
	Events         []Event       `json:"events"`
	Tags           []string      `json:"tags"`
	MissingInfo    []string      `json:"missing_info"`
	AgeBucket      *string       `json:"age_bucket,omitempty"`
	ExpertAnalysis *ExpertOutput `json:"expert_analysis"`
}

type StrategyHint struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Conditions  *string `json:"conditions,omitempty"`
}

// RetrievalContext is ephemeral: assembled for one expert invocation and
// never persisted.
type RetrievalContext struct {
	RecentEntries  []*EntryWithAnalysis `json:"recent_entries"`
	SimilarEntries []*EntryWithAnalysis `json:"similar_entries"`
	Strategies     []StrategyHint       `json:"strategies"`
}
