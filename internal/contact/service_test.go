package contact

import (
	"context"
	"strings"
	"testing"

	"github.com/erselk/ugur-sahan-website/internal/db/backends/memory"
	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/erselk/ugur-sahan-website/internal/domain"
	"github.com/erselk/ugur-sahan-website/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

type countingRecorder struct{ n int }

func (c *countingRecorder) RecordContactMessage(ctx context.Context) { c.n++ }

func newTestService(t *testing.T) (*Service, *MockNotifier, *countingRecorder) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	notifier := &MockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return()
	rec := &countingRecorder{}
	return NewService(memory.NewDatabase().Messages(), notifier, rec, logger.Sugar()), notifier, rec
}

func validSubmission() Submission {
	return Submission{
		Name:    " Ayşe ",
		Email:   "ayse@example.com",
		Subject: "Merhaba",
		Message: "Yazılarınızı çok beğendim.",
	}
}

func TestSubmission_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*Submission)
		want   []domain.FieldError
	}{
		{
			name:   "valid",
			modify: func(*Submission) {},
		},
		{
			name:   "all blank",
			modify: func(s *Submission) { *s = Submission{Name: "  "} },
			want: []domain.FieldError{
				{Field: "name", Reason: domain.ReasonRequired},
				{Field: "email", Reason: domain.ReasonRequired},
				{Field: "subject", Reason: domain.ReasonRequired},
				{Field: "message", Reason: domain.ReasonRequired},
			},
		},
		{
			name:   "email without domain",
			modify: func(s *Submission) { s.Email = "ayse@example" },
			want:   []domain.FieldError{{Field: "email", Reason: domain.ReasonInvalid}},
		},
		{
			name:   "email with space",
			modify: func(s *Submission) { s.Email = "ay se@example.com" },
			want:   []domain.FieldError{{Field: "email", Reason: domain.ReasonInvalid}},
		},
		{
			name:   "message too long",
			modify: func(s *Submission) { s.Message = strings.Repeat("ş", maxMessageLength+1) },
			want:   []domain.FieldError{{Field: "message", Reason: domain.ReasonTooLong}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.modify(&sub)
			err := sub.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.want, verr.Fields)
		})
	}
}

func TestService_SubmitAndInbox(t *testing.T) {
	svc, notifier, rec := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Submit(ctx, validSubmission())
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Ayşe", msg.Name)
	assert.False(t, msg.IsRead)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, 1, rec.n)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.MessageReceived && e.MessageID == msg.ID
	}))

	total, unread, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), unread)

	toggled, err := svc.ToggleRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsRead)

	_, unread, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	toggled, err = svc.ToggleRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsRead)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, msg.ID, list[0].ID)
}

func TestService_SubmitInvalidStoresNothing(t *testing.T) {
	svc, notifier, rec := newTestService(t)
	ctx := context.Background()

	sub := validSubmission()
	sub.Email = "not-an-email"
	_, err := svc.Submit(ctx, sub)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, rec.n)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestService_ToggleMissing(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ToggleRead(context.Background(), "nope")
	assert.True(t, interfaces.IsNotFound(err))
}
