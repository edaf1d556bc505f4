package memory

import (
	"context"
	"strings"
	"sync"
)

type SentCode struct {
	Email     string
	Code      string
	ListingID string
}

// Mailbox records verification emails instead of delivering them.
type Mailbox struct {
	mu   sync.Mutex
	sent []SentCode
	err  error
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) SendVerificationCode(_ context.Context, email string, code string, listingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, SentCode{Email: email, Code: code, ListingID: listingID})
	return nil
}

// FailWith makes every following send return err. Pass nil to recover.
func (m *Mailbox) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *Mailbox) Sent() []SentCode {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]SentCode(nil), m.sent...)
}

// LastCode returns the most recent plaintext code mailed for the listing.
func (m *Mailbox) LastCode(listingID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].ListingID == strings.TrimSpace(listingID) {
			return m.sent[i].Code, true
		}
	}
	return "", false
}
