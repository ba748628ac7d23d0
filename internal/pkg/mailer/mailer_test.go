package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("tickets@museum.test", "ann@example.com", "Your booking", "See you soon")
	require.NoError(t, err)
	assert.Equal(t, []string{"<ann@example.com>"}, msg.GetToString())

	_, err = buildMessage("tickets@museum.test", "not-an-address", "s", "b")
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Send(context.Background(), "a@b.co", "s", "b"))
}
