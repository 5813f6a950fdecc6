package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(&stubSubjectStore{})
	user := uuid.New()

	subject, err := svc.Create(ctx, user, "  Algebra ")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", subject.Name)
	assert.NotEqual(t, uuid.Nil, subject.ID)

	tests := []struct {
		name  string
		input string
	}{
		{"blank", "   "},
		{"too long", strings.Repeat("x", 101)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, user, tc.input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, "name")
		})
	}
}

func TestSubjectService_CreateManyDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := &stubSubjectStore{}
	svc := NewSubjectService(store)
	user := uuid.New()

	_, err := svc.Create(ctx, user, "Physics")
	require.NoError(t, err)

	created, err := svc.CreateMany(ctx, user, []string{"physics", " Chemistry ", "", "CHEMISTRY", "Biology"})
	require.NoError(t, err)

	var names []string
	for _, s := range created {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Chemistry", "Biology"}, names)

	all, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSubjectService_CreateManyIsPerUser(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(&stubSubjectStore{})

	_, err := svc.Create(ctx, uuid.New(), "History")
	require.NoError(t, err)

	created, err := svc.CreateMany(ctx, uuid.New(), []string{"History"})
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestSubjectService_Ownership(t *testing.T) {
	ctx := context.Background()
	svc := NewSubjectService(&stubSubjectStore{})
	owner, stranger := uuid.New(), uuid.New()

	subject, err := svc.Create(ctx, owner, "Art")
	require.NoError(t, err)

	_, err = svc.GetOwned(ctx, stranger, subject.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	assert.ErrorAs(t, svc.Delete(ctx, stranger, subject.ID), &nf)
	require.NoError(t, svc.Delete(ctx, owner, subject.ID))

	count, err := svc.Count(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}
