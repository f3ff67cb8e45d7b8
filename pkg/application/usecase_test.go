package application_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/job"
	"github.com/artem13815/recruitment/pkg/repository/memory"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

type fixture struct {
	db        *memory.DB
	store     *files.Local
	uc        application.UseCase
	hr        auth.User
	candidate auth.User
	job       job.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: memory.New()}
	var err error
	f.store, err = files.NewLocal(t.TempDir(), files.DefaultPolicy())
	require.NoError(t, err)

	f.hr = addUser(t, f.db, auth.RoleHR, "hr@example.com")
	f.candidate = addUser(t, f.db, auth.RoleCandidate, "cand@example.com")
	f.job = addJob(t, f.db, f.hr.ID, 1)
	f.uc = application.NewService(f.db.Applications(), f.db.Jobs(), f.store, files.DefaultPolicy())
	return f
}

func addUser(t *testing.T, db *memory.DB, role auth.Role, email string) auth.User {
	t.Helper()
	u := auth.User{ID: uuid.New(), Username: email[:4], Email: email, Role: role, Approved: true, CreatedAt: time.Now()}
	require.NoError(t, db.Users().Create(context.Background(), u))
	return u
}

func addJob(t *testing.T, db *memory.DB, owner uuid.UUID, vacancies int) job.Job {
	t.Helper()
	j := job.Job{ID: uuid.New(), OwnerID: owner, Title: "Go developer", Description: "d", RequiredSkills: []string{"go"},
		Location: "remote", JobType: "full-time", Vacancies: vacancies, IsOpen: true, CreatedAt: time.Now()}
	require.NoError(t, db.Jobs().Create(context.Background(), j))
	return j
}

func pdfBytes(size int) []byte {
	b := bytes.Repeat([]byte{'x'}, size)
	copy(b, "%PDF-1.4\n")
	return b
}

func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func storedFiles(t *testing.T, store *files.Local) int {
	t.Helper()
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	return len(entries)
}

func TestApplyStoresFileThenRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := pdfBytes(2 << 20)

	a, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{
		JobID: f.job.ID, Filename: "resume.pdf", ContentType: "application/pdf", Data: data,
	})
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, a.Status)
	assert.Equal(t, "resume.pdf", a.ResumeFilename)

	stored, err := f.db.Applications().GetByID(ctx, a.ID)
	require.NoError(t, err)
	ref, err := application.ParseReference(stored.ResumeReference)
	require.NoError(t, err)
	require.Equal(t, application.LocalFile, ref.Kind)

	rc, err := f.store.Open(ctx, ref.Name, 0, -1)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestApplyAcceptsDocx(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Apply(context.Background(), f.candidate, application.ApplyInput{
		JobID: f.job.ID, Filename: "cv.docx", Data: docxBytes(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, storedFiles(t, f.store))
}

func TestApplyRejectsWithoutTouchingStorage(t *testing.T) {
	tests := []struct {
		name string
		in   application.ApplyInput
	}{
		{name: "too large", in: application.ApplyInput{Filename: "resume.pdf", Data: pdfBytes(6 << 20)}},
		{name: "unsupported extension", in: application.ApplyInput{Filename: "resume.txt", Data: []byte("hello")}},
		{name: "no extension", in: application.ApplyInput{Filename: "resume", Data: pdfBytes(10)}},
		{name: "empty", in: application.ApplyInput{Filename: "resume.pdf"}},
		{name: "content is not pdf", in: application.ApplyInput{Filename: "resume.pdf", Data: []byte("MZ\x90\x00 not a pdf")}},
		{name: "declared type mismatch", in: application.ApplyInput{Filename: "resume.pdf", ContentType: "image/png", Data: pdfBytes(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.in.JobID = f.job.ID
			_, err := f.uc.Apply(context.Background(), f.candidate, tt.in)
			var verr files.ErrValidation
			require.ErrorAs(t, err, &verr)
			assert.Zero(t, storedFiles(t, f.store))
			apps, err := f.db.Applications().ListByCandidate(context.Background(), f.candidate.ID, 10, 0)
			require.NoError(t, err)
			assert.Empty(t, apps)
		})
	}
}

func TestApplyClosedOrMissingJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Jobs().SetOpen(ctx, f.job.ID, false))

	_, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	assert.ErrorIs(t, err, application.ErrJobClosed)

	_, err = f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: uuid.New(), Filename: "cv.pdf", Data: pdfBytes(64)})
	assert.ErrorIs(t, err, application.ErrJobClosed)
	assert.Zero(t, storedFiles(t, f.store))
}

func TestApplyOnlyCandidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Apply(context.Background(), f.hr, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	assert.ErrorIs(t, err, application.ErrForbidden)
}

func TestApplyTwiceLeavesNoOrphan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)}

	_, err := f.uc.Apply(ctx, f.candidate, in)
	require.NoError(t, err)
	_, err = f.uc.Apply(ctx, f.candidate, in)
	assert.ErrorIs(t, err, application.ErrAlreadyApplied)
	assert.Equal(t, 1, storedFiles(t, f.store))
}

type failingApps struct {
	*memory.ApplicationRepository
}

func (failingApps) Create(context.Context, application.Application) error {
	return errors.New("database is down")
}

func TestApplyRemovesFileWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	uc := application.NewService(failingApps{f.db.Applications()}, f.db.Jobs(), f.store, files.DefaultPolicy())

	_, err := uc.Apply(context.Background(), f.candidate, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	require.Error(t, err)
	assert.Zero(t, storedFiles(t, f.store))
}

func TestUpdateStatusAutoClosesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	require.NoError(t, err)

	res, err := f.uc.UpdateStatus(ctx, f.hr, a.ID, application.StatusShortlisted)
	require.NoError(t, err)
	assert.True(t, res.JobClosed)
	assert.Equal(t, application.StatusShortlisted, res.Application.Status)

	j, err := f.db.Jobs().GetByID(ctx, f.job.ID)
	require.NoError(t, err)
	assert.False(t, j.IsOpen)
}

func TestUpdateStatusKeepsJobOpenBelowVacancies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	big := addJob(t, f.db, f.hr.ID, 2)
	a, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: big.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	require.NoError(t, err)

	res, err := f.uc.UpdateStatus(ctx, f.hr, a.ID, application.StatusShortlisted)
	require.NoError(t, err)
	assert.False(t, res.JobClosed)
}

func TestUpdateStatusChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	require.NoError(t, err)

	_, err = f.uc.UpdateStatus(ctx, f.hr, a.ID, "hired")
	var verr application.ErrValidation
	assert.ErrorAs(t, err, &verr)

	other := addUser(t, f.db, auth.RoleHR, "other@example.com")
	_, err = f.uc.UpdateStatus(ctx, other, a.ID, application.StatusRejected)
	assert.ErrorIs(t, err, application.ErrForbidden)

	_, err = f.uc.UpdateStatus(ctx, f.candidate, a.ID, application.StatusRejected)
	assert.ErrorIs(t, err, application.ErrForbidden)

	_, err = f.uc.UpdateStatus(ctx, f.hr, uuid.New(), application.StatusRejected)
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestListForJobJoinsCandidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Apply(ctx, f.candidate, application.ApplyInput{JobID: f.job.ID, Filename: "cv.pdf", Data: pdfBytes(64)})
	require.NoError(t, err)

	apps, err := f.uc.ListForJob(ctx, f.hr, f.job.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, f.candidate.Email, apps[0].CandidateEmail)
	assert.Equal(t, f.job.Title, apps[0].JobTitle)

	other := addUser(t, f.db, auth.RoleHR, "other@example.com")
	_, err = f.uc.ListForJob(ctx, other, f.job.ID, 10, 0)
	assert.ErrorIs(t, err, application.ErrForbidden)

	mine, err := f.uc.ListMine(ctx, f.candidate, 10, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
