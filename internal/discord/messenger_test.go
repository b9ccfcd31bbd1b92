package discord

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restError(code int) error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: code}}
}

func TestIsStaleMessage(t *testing.T) {
	assert.True(t, IsStaleMessage(restError(discordgo.ErrCodeUnknownMessage)))
	assert.True(t, IsStaleMessage(restError(discordgo.ErrCodeCannotEditFromAnotherUser)))

	assert.False(t, IsStaleMessage(restError(discordgo.ErrCodeMissingPermissions)))
	assert.False(t, IsStaleMessage(fmt.Errorf("network down")))
	assert.False(t, IsStaleMessage(nil))
	assert.False(t, IsStaleMessage(&discordgo.RESTError{}))
}

func TestIsStaleMessageWrapped(t *testing.T) {
	wrapped := fmt.Errorf("edit failed: %w", restError(discordgo.ErrCodeUnknownMessage))
	assert.True(t, IsStaleMessage(wrapped))
}
