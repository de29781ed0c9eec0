package services

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestExtractTopicTags(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    []string
	}{
		{"sleep question", "why won't she sleep through the night", []string{"sleep", "nap", "bedtime"}},
		{"overlapping triggers dedupe", "she cries at every meal", []string{"crying", "tantrum", "emotion", "feeding", "eating"}},
		{"no trigger", "what books do you recommend", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractTopicTags(tc.message)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("extractTopicTags(%q) = %v, want %v", tc.message, got, tc.want)
			}
		})
	}
}

func TestChatTitleTruncation(t *testing.T) {
	short := "bedtime help"
	if got := chatTitle(short); got != short {
		t.Fatalf("got %q", got)
	}
	long := strings.Repeat("a", 50)
	got := chatTitle(long)
	if len([]rune(got)) != chatTitleMaxRunes+1 || !strings.HasSuffix(got, "…") {
		t.Fatalf("got %q (%d runes)", got, len([]rune(got)))
	}
}

func TestAgeLabel(t *testing.T) {
	birthday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC), "8m"},
		{time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), "2y"},
		{time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC), "2y3m"},
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "1y11m"},
	}
	for _, tc := range cases {
		if got := ageLabel(birthday, tc.at); got != tc.want {
			t.Fatalf("ageLabel(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}
