package assistant

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"museumtix/internal/domain"
	"museumtix/internal/pkg/llm"
)

var crowdLevels = map[string]string{"low": "Low", "medium": "Medium", "high": "High"}

// VisitTimes asks the model for good visit windows at a museum on a date
// (today when empty) and clips them to the museum's opening hours.
func (s *Service) VisitTimes(ctx context.Context, museumID, date string) ([]VisitTime, error) {
	now := s.now().UTC()
	today := now.Format(domain.DateLayout)
	if date == "" {
		date = today
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if date < today {
		return nil, fmt.Errorf("%w: date is in the past", ErrValidation)
	}

	cat, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	m := cat.Museum(museumID)
	if m == nil {
		return nil, ErrNotFound
	}
	open, closing := m.Hours()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Museum: %s (ID: %s), open %s-%s\nDate: %s\nCurrent time: %s\nEvents on that date:\n",
		m.Name, m.ID, open, closing, date, now.Format("15:04"))
	n := 0
	for _, e := range cat.EventsOf(m.ID) {
		if e.Date == date {
			fmt.Fprintf(&sb, "- %s, %s-%s, %d tickets left of %d\n", e.Title, e.StartTime, e.EndTime, e.Remaining(), e.Capacity)
			n++
		}
	}
	if n == 0 {
		sb.WriteString("- none\n")
	}

	var out struct {
		SuggestedTimes []VisitTime `json:"suggested_times"`
	}
	err = s.completeJSON(ctx, llm.Request{
		System:      visitTimesPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: sb.String()}},
		JSON:        true,
		MaxTokens:   600,
		Temperature: 0.3,
	}, &out)
	if err != nil {
		log.Printf("assistant_visit_times_failed museum_id=%s error=%q", museumID, err.Error())
		return nil, ErrUnavailable
	}

	earliest := open
	if date == today {
		if t := now.Add(time.Hour).Format("15:04"); t > earliest {
			earliest = t
		}
	}
	return clipVisitTimes(out.SuggestedTimes, earliest, closing), nil
}

// clipVisitTimes keeps well-formed windows and trims them to [from, until].
func clipVisitTimes(in []VisitTime, from, until string) []VisitTime {
	out := make([]VisitTime, 0, len(in))
	for _, vt := range in {
		start, ok1 := validTime(vt.StartTime)
		end, ok2 := validTime(vt.EndTime)
		if !ok1 || !ok2 || dayParts[start] || dayParts[end] {
			continue
		}
		if start < from {
			start = from
		}
		if end > until {
			end = until
		}
		if start >= end {
			continue
		}
		level, ok := crowdLevels[strings.ToLower(strings.TrimSpace(vt.CrowdLevel))]
		if !ok {
			level = "Medium"
		}
		out = append(out, VisitTime{
			StartTime:    start,
			EndTime:      end,
			CrowdLevel:   level,
			EventDetails: strings.TrimSpace(vt.EventDetails),
		})
	}
	return out
}

// Translate returns text in the target language, or text unchanged when the model fails.
func (s *Service) Translate(ctx context.Context, text, targetLanguage string) string {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(targetLanguage) == "" {
		return text
	}
	var out struct {
		TranslatedText string `json:"translated_text"`
	}
	err := s.completeJSON(ctx, llm.Request{
		System:      translatePrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Target language: " + targetLanguage + "\n\n" + text}},
		JSON:        true,
		MaxTokens:   1200,
		Temperature: 0,
	}, &out)
	if err != nil || strings.TrimSpace(out.TranslatedText) == "" {
		if err != nil {
			log.Printf("assistant_translate_failed language=%s error=%q", targetLanguage, err.Error())
		}
		return text
	}
	return out.TranslatedText
}
