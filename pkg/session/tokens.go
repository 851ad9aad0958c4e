package session

import "sync"

// Channel groups requests whose results supersede each other.
type Channel int

const (
	ChannelYear Channel = iota
	ChannelOverlay
	ChannelSearch
)

// Token identifies one request on a channel. Only the most recently issued
// token of a channel is current.
type Token struct {
	Channel Channel
	Gen     uint64
}

// Tokens issues request tokens.
type Tokens struct {
	mu  sync.Mutex
	gen map[Channel]uint64
}

// Next issues a new token for ch, making every earlier token stale.
func (t *Tokens) Next(ch Channel) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen == nil {
		t.gen = make(map[Channel]uint64)
	}
	t.gen[ch]++
	return Token{Channel: ch, Gen: t.gen[ch]}
}

// Current reports whether tok is the latest token of its channel.
func (t *Tokens) Current(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tok.Gen != 0 && t.gen[tok.Channel] == tok.Gen
}

// Invalidate makes every outstanding token of ch stale.
func (t *Tokens) Invalidate(ch Channel) {
	t.Next(ch)
}
