package assistant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"museumtix/internal/domain"
	"museumtix/internal/modules/catalog"
)

func testCatalog() *catalog.Snapshot {
	return &catalog.Snapshot{
		Museums: []domain.Museum{
			{ID: "museum-1", Name: "The Metropolitan Museum of Art", Location: domain.Location{City: "New York"}},
			{ID: "museum-2", Name: "Louvre Museum", Location: domain.Location{City: "Paris"}},
			{ID: "museum-3", Name: "British Museum", Location: domain.Location{City: "London"}},
		},
		Events: []domain.Event{
			{ID: "event-1", MuseumID: "museum-1", Title: "Ancient Egypt: Art and Magic", Date: "2030-06-01",
				StartTime: "10:00", EndTime: "17:00", Capacity: 200, BookedCount: 150, BasePrice: 25},
			{ID: "event-2", MuseumID: "museum-2", Title: "Mona Lisa Up Close", Date: "2030-07-01",
				StartTime: "09:00", EndTime: "12:00", Capacity: 20, BookedCount: 10, BasePrice: 18},
		},
	}
}

func testValidator() draftValidator {
	return draftValidator{cat: testCatalog(), today: "2030-01-10"}
}

func TestCount_UnmarshalJSON(t *testing.T) {
	cases := map[string]count{
		`2`:     2,
		`2.0`:   2,
		`"3"`:   3,
		`null`:  0,
		`"two"`: 0,
		`1.5`:   -1,
	}
	for raw, want := range cases {
		var c count
		require.NoError(t, json.Unmarshal([]byte(raw), &c), raw)
		assert.Equal(t, want, c, raw)
	}
}

func TestFindMuseum(t *testing.T) {
	cat := testCatalog()

	assert.Equal(t, "museum-2", findMuseum(cat, "museum-2").ID)
	assert.Equal(t, "museum-2", findMuseum(cat, "louvre museum").ID)
	assert.Equal(t, "museum-1", findMuseum(cat, "Metropolitan").ID)
	assert.Nil(t, findMuseum(cat, "Museum"), "ambiguous")
	assert.Nil(t, findMuseum(cat, "Mu"), "too short")
	assert.Nil(t, findMuseum(cat, "Prado"))
}

func TestApply_EventFillsMuseumDateAndTime(t *testing.T) {
	v := testValidator()
	var d Draft

	err := v.apply(&d, extraction{Event: "Ancient Egypt", TicketCount: 2, TicketType: "Adults"})
	require.Nil(t, err)
	assert.Equal(t, "museum-1", d.MuseumID)
	assert.Equal(t, "The Metropolitan Museum of Art", d.MuseumName)
	assert.Equal(t, "event-1", d.EventID)
	assert.Equal(t, "2030-06-01", d.VisitDate)
	assert.Equal(t, "10:00", d.VisitTime)
	assert.Equal(t, 2, d.TicketCount)
	assert.Equal(t, "adult", d.TicketType)
	assert.Equal(t, SlotContactEmail, d.Missing())
}

func TestApply_ChangingMuseumClearsForeignEvent(t *testing.T) {
	v := testValidator()
	var d Draft
	require.Nil(t, v.apply(&d, extraction{Event: "event-1"}))

	require.Nil(t, v.apply(&d, extraction{Museum: "Louvre"}))
	assert.Equal(t, "museum-2", d.MuseumID)
	assert.Empty(t, d.EventID)
	assert.Empty(t, d.VisitDate)
	assert.Empty(t, d.VisitTime)
}

func TestApply_EventAtOtherMuseumIsRejected(t *testing.T) {
	v := testValidator()
	d := Draft{MuseumID: "museum-1", MuseumName: "The Metropolitan Museum of Art"}

	err := v.apply(&d, extraction{Event: "Mona Lisa Up Close"})
	require.NotNil(t, err)
	assert.Equal(t, SlotEvent, err.Slot)
	assert.Contains(t, err.Question, "is not held at The Metropolitan Museum of Art")
	assert.Empty(t, d.EventID)
}

func TestApply_KeepsValidValuesAndReportsFirstProblem(t *testing.T) {
	v := testValidator()
	var d Draft

	err := v.apply(&d, extraction{
		Museum:       "museum-1",
		VisitDate:    "2029-12-31",
		TicketCount:  4,
		TicketType:   "vip",
		ContactEmail: "not-an-email",
	})
	require.NotNil(t, err)
	assert.Equal(t, SlotVisitDate, err.Slot)
	assert.Equal(t, "2029-12-31 is in the past. Which upcoming date would you like to visit?", err.Question)
	assert.Equal(t, "museum-1", d.MuseumID)
	assert.Equal(t, 4, d.TicketCount)
	assert.Empty(t, d.TicketType)
	assert.Empty(t, d.ContactEmail)
}

func TestApply_Checks(t *testing.T) {
	cases := []struct {
		name string
		x    extraction
		slot Slot
		text string
	}{
		{"wrong date for event", extraction{VisitDate: "2030-06-02"}, SlotVisitDate, "takes place on 2030-06-01"},
		{"bad date", extraction{VisitDate: "next friday"}, SlotVisitDate, "YYYY-MM-DD"},
		{"time outside hours", extraction{VisitTime: "18:30"}, SlotVisitTime, "runs from 10:00 to 17:00"},
		{"unreadable time", extraction{VisitTime: "noonish"}, SlotVisitTime, "couldn't understand the time"},
		{"fractional count", extraction{TicketCount: -1}, SlotTicketCount, "whole number"},
		{"over capacity", extraction{TicketCount: 51}, SlotTicketCount, "Only 50 tickets are left"},
		{"unknown museum", extraction{Museum: "Prado"}, SlotMuseum, `couldn't find a museum called "Prado"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := testValidator()
			var d Draft
			require.Nil(t, v.apply(&d, extraction{Event: "event-1"}))

			err := v.apply(&d, tc.x)
			require.NotNil(t, err)
			assert.Equal(t, tc.slot, err.Slot)
			assert.Contains(t, err.Question, tc.text)
		})
	}
}

func TestApply_DayPartAndOptionalFields(t *testing.T) {
	v := testValidator()
	var d Draft
	require.Nil(t, v.apply(&d, extraction{
		Event:           "event-1",
		VisitTime:       "Afternoon",
		VisitorNames:    []string{" Ann ", "", "Bob"},
		ContactPhone:    " +1 555 0100 ",
		PaymentMethod:   "CARD",
		SpecialRequests: "wheelchair access",
	}))
	assert.Equal(t, "afternoon", d.VisitTime)
	assert.Equal(t, []string{"Ann", "Bob"}, d.VisitorNames)
	assert.Equal(t, "+1 555 0100", d.ContactPhone)
	assert.Equal(t, "card", d.PaymentMethod)
	assert.Equal(t, "wheelchair access", d.SpecialRequests)
}

func TestRevalidate_DropsValuesTheCatalogNoLongerSupports(t *testing.T) {
	v := testValidator()
	d := Draft{MuseumID: "museum-1", MuseumName: "The Metropolitan Museum of Art", EventID: "event-9", VisitDate: "2030-06-01"}

	err := v.revalidate(&d)
	require.NotNil(t, err)
	assert.Equal(t, SlotEvent, err.Slot)
	assert.Empty(t, d.EventID)
	assert.Empty(t, d.VisitDate)

	d = Draft{MuseumID: "museum-3", MuseumName: "British Museum"}
	err = v.revalidate(&d)
	require.NotNil(t, err)
	assert.Equal(t, SlotMuseum, err.Slot)
	assert.Contains(t, err.Question, "no upcoming events at British Museum")
	assert.Empty(t, d.MuseumID)

	d = Draft{MuseumID: "museum-1", MuseumName: "The Metropolitan Museum of Art", EventID: "event-1", TicketCount: 80}
	err = v.revalidate(&d)
	require.NotNil(t, err)
	assert.Equal(t, SlotTicketCount, err.Slot)
	assert.Zero(t, d.TicketCount)
}

func TestSummary(t *testing.T) {
	v := testValidator()
	d := Draft{
		MuseumID: "museum-1", MuseumName: "The Metropolitan Museum of Art",
		EventID: "event-1", EventTitle: "Ancient Egypt: Art and Magic",
		VisitDate: "2030-06-01", VisitTime: "10:00",
		TicketCount: 3, TicketType: "student", ContactEmail: "ann@example.com",
	}
	s := v.summary(&d)
	assert.Contains(t, s, "- Tickets: 3 x student")
	assert.Contains(t, s, "- Total: $75.00")
	assert.Contains(t, s, "Shall I confirm this booking now?")
	assert.NotContains(t, s, "Visitors")
}

func TestQuestion_EventListsOptions(t *testing.T) {
	v := testValidator()
	d := Draft{MuseumID: "museum-2", MuseumName: "Louvre Museum"}
	assert.Equal(t, "Which event at Louvre Museum would you like to attend? Options: Mona Lisa Up Close on 2030-07-01.",
		v.question(&d, SlotEvent))
}
