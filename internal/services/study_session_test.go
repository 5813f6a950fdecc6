package services

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

func TestStudySessionService_CreatePublishesChange(t *testing.T) {
	ctx := context.Background()
	store := &stubSessionStore{}
	pub := &recordingPublisher{}
	svc := NewStudySessionService(store, &stubSubjectStore{}, pub)
	user := uuid.New()

	session, err := svc.Create(ctx, user, models.CreateStudySessionRequest{
		DurationMinutes: 45,
		Date:            "2025-01-10",
		StartHour:       intPtr(21),
		StartMinute:     intPtr(30),
	})
	require.NoError(t, err)

	assert.Equal(t, civil.Date{Year: 2025, Month: time.January, Day: 10}, session.Date)
	assert.Equal(t, user, session.UserID)
	require.Len(t, pub.messages, 1)
	assert.Equal(t, user, pub.users[0])
	assert.Equal(t, models.WSTypeSessionsChanged, pub.messages[0].Type)
	assert.Equal(t, models.SessionsChangedEvent{Action: "created", SessionID: session.ID}, pub.messages[0].Payload)
}

func TestStudySessionService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	tests := []struct {
		name  string
		req   models.CreateStudySessionRequest
		field string
	}{
		{"zero duration", models.CreateStudySessionRequest{DurationMinutes: 0, Date: "2025-01-10"}, "duration_minutes"},
		{"missing date", models.CreateStudySessionRequest{DurationMinutes: 10}, "date"},
		{"malformed date", models.CreateStudySessionRequest{DurationMinutes: 10, Date: "10/01/2025"}, "date"},
		{"hour out of range", models.CreateStudySessionRequest{DurationMinutes: 10, Date: "2025-01-10", StartHour: intPtr(24)}, "start_hour"},
		{"minute out of range", models.CreateStudySessionRequest{DurationMinutes: 10, Date: "2025-01-10", StartMinute: intPtr(60)}, "start_minute"},
		{"bad subject id", models.CreateStudySessionRequest{DurationMinutes: 10, Date: "2025-01-10", SubjectID: "nope"}, "subject_id"},
		{"foreign subject", models.CreateStudySessionRequest{DurationMinutes: 10, Date: "2025-01-10", SubjectID: uuid.NewString()}, "subject_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubSessionStore{}
			pub := &recordingPublisher{}
			svc := NewStudySessionService(store, &stubSubjectStore{}, pub)

			_, err := svc.Create(ctx, user, tc.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tc.field)
			assert.Empty(t, store.sessions)
			assert.Empty(t, pub.messages)
		})
	}
}

func TestStudySessionService_CreateWithOwnedSubject(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	subjects := &stubSubjectStore{}
	subject, err := NewSubjectService(subjects).Create(ctx, user, "Math")
	require.NoError(t, err)

	svc := NewStudySessionService(&stubSessionStore{}, subjects, nil)
	session, err := svc.Create(ctx, user, models.CreateStudySessionRequest{
		SubjectID:       subject.ID.String(),
		DurationMinutes: 20,
		Date:            "2025-02-01",
	})
	require.NoError(t, err)
	require.NotNil(t, session.SubjectID)
	assert.Equal(t, subject.ID, *session.SubjectID)
}

func TestStudySessionService_DeleteEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	store := &stubSessionStore{}
	pub := &recordingPublisher{}
	svc := NewStudySessionService(store, &stubSubjectStore{}, pub)
	owner, stranger := uuid.New(), uuid.New()

	session, err := svc.Create(ctx, owner, models.CreateStudySessionRequest{DurationMinutes: 30, Date: "2025-03-03"})
	require.NoError(t, err)

	var nf *NotFoundError
	assert.ErrorAs(t, svc.Delete(ctx, stranger, session.ID), &nf)
	_, err = svc.GetOwned(ctx, stranger, session.ID)
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, svc.Delete(ctx, owner, session.ID))
	require.Len(t, pub.messages, 2)
	assert.Equal(t, models.SessionsChangedEvent{Action: "deleted", SessionID: session.ID}, pub.messages[1].Payload)
}

func TestStudySessionService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewStudySessionService(&stubSessionStore{}, &stubSubjectStore{}, nil)
	user := uuid.New()

	for _, d := range []string{"2025-01-02", "2025-01-05", "2025-01-03"} {
		_, err := svc.Create(ctx, user, models.CreateStudySessionRequest{DurationMinutes: 10, Date: d})
		require.NoError(t, err)
	}

	sessions, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2025-01-05", sessions[0].Date.String())
	assert.Equal(t, "2025-01-02", sessions[2].Date.String())
}
