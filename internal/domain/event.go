package domain

import "time"

const DateLayout = "2006-01-02"

// Event is a dated exhibit or programme of a museum that visitors buy tickets for.
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	MuseumID    string    `json:"museum_id" gorm:"index;size:64"`
	Title       string    `json:"title" gorm:"size:255"`
	Description string    `json:"description" gorm:"type:text"`
	Date        string    `json:"date" gorm:"size:10;index"`
	StartTime   string    `json:"start_time" gorm:"size:5"`
	EndTime     string    `json:"end_time" gorm:"size:5"`
	Capacity    int       `json:"capacity"`
	BookedCount int       `json:"booked_count"`
	BasePrice   float64   `json:"base_price"`
	ImageURL    string    `json:"image_url,omitempty"`
	ImageHint   string    `json:"image_hint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Event) Remaining() int {
	if e.BookedCount >= e.Capacity {
		return 0
	}
	return e.Capacity - e.BookedCount
}

func (e *Event) Slot() string {
	return e.StartTime + "-" + e.EndTime
}

// IsPast reports whether the event day is before the day of now.
func (e *Event) IsPast(now time.Time) bool {
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}
