// Package contact stores contact form submissions and serves them to the
// admin inbox.
package contact

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/events"
	"go.uber.org/zap"
)

const (
	maxNameLength    = 120
	maxEmailLength   = 254
	maxSubjectLength = 200
	maxMessageLength = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is the public contact form.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Recorder interface {
	RecordContactMessage(ctx context.Context)
}

type Service struct {
	messages interfaces.MessageStore
	notifier events.Notifier
	metrics  Recorder
	logger   *zap.SugaredLogger
}

func NewService(messages interfaces.MessageStore, notifier events.Notifier, metrics Recorder, logger *zap.SugaredLogger) *Service {
	if notifier == nil {
		notifier = events.Nop{}
	}
	return &Service{messages: messages, notifier: notifier, metrics: metrics, logger: logger}
}

// Validate trims the submission in place and reports every bad field.
func (s *Submission) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)

	verr := &domain.ValidationError{}
	check := func(field, value string, max int) bool {
		if value == "" {
			verr.Add(field, domain.ReasonRequired)
			return false
		}
		if utf8.RuneCountInString(value) > max {
			verr.Add(field, domain.ReasonTooLong)
			return false
		}
		return true
	}

	check("name", s.Name, maxNameLength)
	if check("email", s.Email, maxEmailLength) && !emailPattern.MatchString(s.Email) {
		verr.Add("email", domain.ReasonInvalid)
	}
	check("subject", s.Subject, maxSubjectLength)
	check("message", s.Message, maxMessageLength)

	if verr.Empty() {
		return nil
	}
	return verr
}

// Submit stores a new unread message.
func (s *Service) Submit(ctx context.Context, sub Submission) (*domain.Message, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	msg, err := s.messages.Insert(ctx, &domain.Message{
		Name:    sub.Name,
		Email:   sub.Email,
		Subject: sub.Subject,
		Message: sub.Message,
		IsRead:  false,
	})
	if err != nil {
		s.logger.Errorw("Failed to store contact message", "error", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordContactMessage(ctx)
	}
	s.logger.Infow("Contact message received", "id", msg.ID, "subject", msg.Subject)
	s.notifier.Notify(ctx, events.MessageEvent(msg))
	return msg, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Message, error) {
	msgs, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return msgs, nil
}

// ToggleRead flips the read flag of one message.
func (s *Service) ToggleRead(ctx context.Context, id string) (*domain.Message, error) {
	msg, err := s.messages.ToggleRead(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("Contact message toggled", "id", id, "is_read", msg.IsRead)
	return msg, nil
}

// Counts returns the total and unread message counts.
func (s *Service) Counts(ctx context.Context) (total, unread int64, err error) {
	if total, err = s.messages.Count(ctx, false); err != nil {
		return 0, 0, err
	}
	if unread, err = s.messages.Count(ctx, true); err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}
