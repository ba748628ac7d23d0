package domain

import "time"

type OpenHours struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Location struct {
	Address string `json:"address" gorm:"column:address"`
	City    string `json:"city" gorm:"column:city;index"`
	Country string `json:"country" gorm:"column:country"`
}

// Museum is reference data maintained by admins.
type Museum struct {
	ID          string      `json:"id" gorm:"primaryKey;size:64"`
	Name        string      `json:"name" gorm:"size:255"`
	Description string      `json:"description" gorm:"type:text"`
	Location    Location    `json:"location" gorm:"embedded"`
	OpenHours   []OpenHours `json:"open_hours" gorm:"type:text;serializer:json"`
	ImageURL    string      `json:"image_url,omitempty"`
	ImageHint   string      `json:"image_hint,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Hours returns the first opening window, "10:00"-"17:00" when none is set.
func (m *Museum) Hours() (string, string) {
	for _, h := range m.OpenHours {
		if h.Open != "" && h.Close != "" {
			return h.Open, h.Close
		}
	}
	return "10:00", "17:00"
}
