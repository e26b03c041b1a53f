// Package sender abstracts the channel-specific outbound messaging
// transport (WhatsApp, Telegram, ...). The verdict engine only decides
// what to send; encoding and delivery live behind this interface.
package sender

import (
	"context"
	"sync"
)

// Button is a quick-reply action attached to a message.
type Button struct {
	ID    string
	Title string
}

// MenuRow is one selectable row in a list menu.
type MenuRow struct {
	ID          string
	Title       string
	Description string
}

type Sender interface {
	SendText(ctx context.Context, to, text string) error
	SendButtons(ctx context.Context, to, text string, buttons []Button) error
	SendMenu(ctx context.Context, to, text, buttonLabel string, rows []MenuRow) error
}

// OutboundMessage is a record of one send, captured by CaptureSender.
type OutboundMessage struct {
	To      string
	Text    string
	Buttons []Button
	Rows    []MenuRow
}

// CaptureSender records outbound messages instead of delivering them.
// Used in tests, and as a stand-in transport in local development.
type CaptureSender struct {
	mu   sync.Mutex
	Sent []OutboundMessage
	// when set, every send fails with this error
	FailWith error
}

func NewCaptureSender() *CaptureSender {
	return &CaptureSender{}
}

func (s *CaptureSender) SendText(ctx context.Context, to, text string) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, OutboundMessage{To: to, Text: text})
	return nil
}

func (s *CaptureSender) SendButtons(ctx context.Context, to, text string, buttons []Button) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, OutboundMessage{To: to, Text: text, Buttons: buttons})
	return nil
}

func (s *CaptureSender) SendMenu(ctx context.Context, to, text, buttonLabel string, rows []MenuRow) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, OutboundMessage{To: to, Text: text, Rows: rows})
	return nil
}

// Count returns the number of captured sends.
func (s *CaptureSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// Last returns the most recently captured send, or nil.
func (s *CaptureSender) Last() *OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return nil
	}
	out := s.Sent[len(s.Sent)-1]
	return &out
}
