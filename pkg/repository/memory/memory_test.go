package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/repository/memory"
)

func seedJob(t *testing.T, db *memory.DB) (auth.User, job.Job) {
	t.Helper()
	ctx := context.Background()
	hr := auth.User{ID: uuid.New(), Email: "hr@example.com", Role: auth.RoleHR, Approved: true}
	require.NoError(t, db.Users().Create(ctx, hr))
	j := job.Job{ID: uuid.New(), OwnerID: hr.ID, Title: "Backend", Vacancies: 2, IsOpen: true, CreatedAt: time.Now()}
	require.NoError(t, db.Jobs().Create(ctx, j))
	return hr, j
}

func TestDuplicateEmail(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	require.NoError(t, db.Users().Create(ctx, auth.User{ID: uuid.New(), Email: "a@example.com"}))
	err := db.Users().Create(ctx, auth.User{ID: uuid.New(), Email: "a@example.com"})
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)

	_, err = db.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestApplicationsJoinAndPage(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_, j := seedJob(t, db)
	apps := db.Applications()

	base := time.Now()
	for i := 0; i < 5; i++ {
		c := auth.User{ID: uuid.New(), Username: "c", Email: uuid.NewString() + "@example.com", Role: auth.RoleCandidate}
		require.NoError(t, db.Users().Create(ctx, c))
		require.NoError(t, apps.Create(ctx, application.Application{
			ID: uuid.New(), JobID: j.ID, CandidateID: c.ID, Status: application.StatusApplied,
			ResumeReference: "resume_x.pdf", AppliedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	first, err := apps.ListByJob(ctx, j.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].AppliedAt.After(first[1].AppliedAt), "newest first")
	assert.Equal(t, "Backend", first[0].JobTitle)
	assert.NotEmpty(t, first[0].CandidateEmail)

	rest, err := apps.ListByJob(ctx, j.ID, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	none, err := apps.ListByJob(ctx, j.ID, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApplyTwice(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_, j := seedJob(t, db)
	candidate := uuid.New()
	a := application.Application{ID: uuid.New(), JobID: j.ID, CandidateID: candidate, Status: application.StatusApplied}
	require.NoError(t, db.Applications().Create(ctx, a))

	a.ID = uuid.New()
	assert.ErrorIs(t, db.Applications().Create(ctx, a), application.ErrAlreadyApplied)
}

func TestCountByJobAndStatus(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_, j := seedJob(t, db)
	apps := db.Applications()
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, apps.Create(ctx, application.Application{ID: ids[i], JobID: j.ID, CandidateID: uuid.New(), Status: application.StatusApplied}))
	}
	require.NoError(t, apps.UpdateStatus(ctx, ids[0], application.StatusShortlisted))
	require.NoError(t, apps.UpdateStatus(ctx, ids[1], application.StatusShortlisted))

	n, err := apps.CountByJobAndStatus(ctx, j.ID, application.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, apps.UpdateStatus(ctx, uuid.New(), application.StatusRejected), application.ErrNotFound)
}

func TestLegacyReferences(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	_, j := seedJob(t, db)
	apps := db.Applications()

	legacy := application.Application{ID: uuid.New(), JobID: j.ID, CandidateID: uuid.New(),
		ResumeReference: "https://res.cloudinary.com/demo/raw/upload/v1/resumes/resume_1_2_cv.pdf"}
	local := application.Application{ID: uuid.New(), JobID: j.ID, CandidateID: uuid.New(), ResumeReference: "resume_1_2_cv.pdf"}
	broken := application.Application{ID: uuid.New(), JobID: j.ID, CandidateID: uuid.New(), ResumeReference: "../cv.pdf"}
	for _, a := range []application.Application{legacy, local, broken} {
		apps.PutApplication(a)
	}

	got, err := apps.ListLegacyReferences(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, legacy.ID, got[0].ID)

	err = apps.ReplaceResumeReference(ctx, legacy.ID, "stale", "resume_1_2_cv.pdf")
	assert.ErrorIs(t, err, application.ErrReferenceChanged)
	require.NoError(t, apps.ReplaceResumeReference(ctx, legacy.ID, legacy.ResumeReference, "resume_1_2_cv.pdf"))
	assert.ErrorIs(t, apps.ReplaceResumeReference(ctx, uuid.New(), "a", "b"), application.ErrNotFound)

	got, err = apps.ListLegacyReferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJobLists(t *testing.T) {
	db := memory.New()
	ctx := context.Background()
	hr, j := seedJob(t, db)
	other := job.Job{ID: uuid.New(), OwnerID: uuid.New(), Title: "Other", IsOpen: true, CreatedAt: time.Now().Add(time.Minute)}
	require.NoError(t, db.Jobs().Create(ctx, other))
	require.NoError(t, db.Jobs().SetOpen(ctx, j.ID, false))

	open, err := db.Jobs().ListOpen(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, other.ID, open[0].ID)

	mine, err := db.Jobs().ListByOwner(ctx, hr.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.False(t, mine[0].IsOpen)

	all, err := db.Jobs().ListAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.ErrorIs(t, db.Jobs().SetOpen(ctx, uuid.New(), true), job.ErrNotFound)
}
