package bot

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// HandlerAdder registers a gateway event handler and returns its remove
// function. *discordgo.Session satisfies it.
type HandlerAdder interface {
	AddHandler(handler interface{}) func()
}

// Proof is the outcome of a collection window.
type Proof struct {
	Note     string
	PhotoURL string
	TimedOut bool
}

// ProofCollector waits for a single message from a given author in a given
// channel. The window collects at most one message; everything else in the
// interval is ignored.
type ProofCollector struct {
	adder HandlerAdder
}

func NewProofCollector(adder HandlerAdder) *ProofCollector {
	return &ProofCollector{adder: adder}
}

// Await blocks until the author posts in the channel or the window
// elapses. The message path and the timeout path converge on exactly one
// result even if both fire: the first one wins.
func (c *ProofCollector) Await(channelID, authorID string, window time.Duration) Proof {
	result := make(chan Proof, 1)
	var once sync.Once

	remove := c.adder.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m.ChannelID != channelID || m.Author == nil || m.Author.ID != authorID {
			return
		}
		proof := Proof{Note: m.Content}
		if len(m.Attachments) > 0 {
			proof.PhotoURL = m.Attachments[0].URL
		}
		once.Do(func() { result <- proof })
	})
	defer remove()

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case proof := <-result:
		return proof
	case <-timer.C:
		once.Do(func() { result <- Proof{TimedOut: true} })
		return <-result
	}
}
