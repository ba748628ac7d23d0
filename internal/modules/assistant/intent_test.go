package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	yes := []string{"yes", "Yes!", "yeah sure", "ok", "Confirm", "please confirm", "go ahead", "book it please", "sounds good to me"}
	for _, msg := range yes {
		assert.True(t, isAffirmative(msg), msg)
	}

	no := []string{"", "no", "cancel", "yes, but 3 tickets", "not yet", "I don't know", "what time is it", "ok 4 tickets"}
	for _, msg := range no {
		assert.False(t, isAffirmative(msg), msg)
	}
}

func TestIsBareConfirmation(t *testing.T) {
	for _, msg := range []string{"yes", "Yes!", "ok thanks", "yes please go ahead", "sure, book it"} {
		assert.True(t, isBareConfirmation(msg), msg)
	}
	for _, msg := range []string{"Sure, book it for the Mona Lisa too", "yes the Louvre", "no", "what time is it"} {
		assert.False(t, isBareConfirmation(msg), msg)
	}
}

func TestIsNegative(t *testing.T) {
	assert.True(t, isNegative("No."))
	assert.True(t, isNegative("never mind"))
	assert.True(t, isNegative("  Cancel the booking! "))
	assert.False(t, isNegative("no, 3 tickets instead"))
	assert.False(t, isNegative("cancel my 2pm slot and pick 3pm"))
}
