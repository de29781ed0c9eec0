package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/minachen/sproutlog-backend/internal/types"
)

// entryView flattens a loaded Entry row (with optional fact card and
// analysis preloads) into the composed JSON shape the API returns.
// Malformed stored JSON degrades to empty slices rather than failing a read.
func entryView(entry *types.Entry) *types.EntryWithAnalysis {
	view := &types.EntryWithAnalysis{
		ID:        entry.ID,
		RawText:   entry.RawText,
		EntryDate: entry.EntryDate,
		ChildAge:  entry.ChildAge,
		CreatedAt: entry.CreatedAt,
	}
	if entry.FactCard == nil {
		return view
	}
	card := &types.FactCardWithMeta{
		ID:          entry.FactCard.ID,
		OneLine:     entry.FactCard.OneLine,
		Events:      decodeJSON[[]types.Event](entry.FactCard.Events),
		Tags:        decodeJSON[[]string](entry.FactCard.Tags),
		MissingInfo: decodeJSON[[]string](entry.FactCard.MissingInfo),
		AgeBucket:   entry.FactCard.AgeBucket,
	}
	if analysis := entry.FactCard.ExpertAnalysis; analysis != nil {
		card.ExpertAnalysis = &types.ExpertOutput{
			Interpretation: analysis.Interpretation,
			Suggestions:    decodeJSON[[]types.Suggestion](analysis.Suggestions),
			Patterns:       decodeJSON[[]types.Pattern](analysis.Patterns),
			RiskFlags:      decodeJSON[[]string](analysis.RiskFlags),
		}
	}
	view.FactCard = card
	return view
}

func entryViews(entries []*types.Entry) []*types.EntryWithAnalysis {
	views := make([]*types.EntryWithAnalysis, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView(entry))
	}
	return views
}

func decodeJSON[T any](raw []byte) T {
	var out T
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// ageLabel renders a child's age at a reference time, e.g. "2y3m" or "8m".
func ageLabel(birthday, at time.Time) string {
	if at.Before(birthday) {
		return ""
	}
	years := at.Year() - birthday.Year()
	months := int(at.Month()) - int(birthday.Month())
	if at.Day() < birthday.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	if years <= 0 {
		return fmt.Sprintf("%dm", months)
	}
	if months == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy%dm", years, months)
}
