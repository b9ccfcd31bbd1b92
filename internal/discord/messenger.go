// Package discord wraps the chat platform client behind a small interface
// so the services that post messages can be tested with fakes.
package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

// Messenger covers the channel message operations the services need.
// *Session satisfies it.
type Messenger interface {
	Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error)
	Fetch(channelID, messageID string) (*discordgo.Message, error)
}

// Session adapts *discordgo.Session to Messenger.
type Session struct {
	S *discordgo.Session
}

func NewSession(s *discordgo.Session) *Session {
	return &Session{S: s}
}

func (s *Session) Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	return s.S.ChannelMessageSendComplex(channelID, msg)
}

func (s *Session) Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return s.S.ChannelMessageEditComplex(edit)
}

func (s *Session) Fetch(channelID, messageID string) (*discordgo.Message, error) {
	return s.S.ChannelMessage(channelID, messageID)
}

// IsStaleMessage reports whether an edit failed because the target message
// is gone or belongs to someone else. Both cases are self-healing: the
// caller drops the stored message id and sends a new message instead.
func IsStaleMessage(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Message == nil {
		return false
	}
	switch rest.Message.Code {
	case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeCannotEditFromAnotherUser:
		return true
	}
	return false
}
