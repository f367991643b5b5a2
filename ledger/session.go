package ledger

import (
	"strings"
	"sync"

	"github.com/brickfolio/brickfolio/schema"
)

// Session owns the connected account identity. Ownership and voting power
// are account-scoped, so an account change must reach every cache; the
// wallet-provider event is delivered to the subscribers registered here
// rather than mutated ambiently.
type Session struct {
	mu       sync.RWMutex
	account  string
	onChange []func(account string)
}

func NewSession() *Session {
	return &Session{}
}

// Account returns the connected account, or ErrNotConnected when no wallet
// session is available.
func (s *Session) Account() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == "" {
		return "", schema.ErrNotConnected
	}
	return s.account, nil
}

func (s *Session) Connected() bool {
	_, err := s.Account()
	return err == nil
}

// Connect sets the active account. Switching to a different account while
// one is connected fires the change subscribers.
func (s *Session) Connect(account string) {
	account = strings.ToLower(account)
	s.mu.Lock()
	prev := s.account
	s.account = account
	subs := s.onChange
	s.mu.Unlock()

	if prev != "" && prev != account {
		for _, fn := range subs {
			fn(account)
		}
	}
}

func (s *Session) Disconnect() {
	s.mu.Lock()
	prev := s.account
	s.account = ""
	subs := s.onChange
	s.mu.Unlock()

	if prev != "" {
		for _, fn := range subs {
			fn("")
		}
	}
}

// OnAccountChange registers a subscriber. Subscribers run on the caller's
// goroutine of Connect/Disconnect, after the account is swapped.
func (s *Session) OnAccountChange(fn func(account string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// SameAccount compares two addresses case-insensitively.
func SameAccount(a, b string) bool {
	return strings.EqualFold(a, b)
}
