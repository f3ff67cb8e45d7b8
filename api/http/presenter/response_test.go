package presenter

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artem13815/recruitment/pkg/application"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/resume"
	"github.com/artem13815/recruitment/pkg/storage/files"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{files.ErrValidation("file too large"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("apply: %w", application.ErrAlreadyApplied), http.StatusConflict, "ALREADY_APPLIED"},
		{auth.ErrPendingApproval, http.StatusForbidden, "PENDING_APPROVAL"},
		{resume.ErrUnsupportedPreview, http.StatusUnsupportedMediaType, "UNSUPPORTED_PREVIEW"},
		{resume.ErrNeedsMigration, http.StatusConflict, "RESUME_NEEDS_MIGRATION"},
		{resume.ErrFileMissing, http.StatusNotFound, "RESUME_FILE_MISSING"},
		{resume.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestClassifyHidesStorageDetails(t *testing.T) {
	err := fmt.Errorf("%w: open /srv/uploads/resumes/x.pdf: permission denied", resume.ErrStorage)
	status, code, msg := Classify(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "STORAGE_ERROR", code)
	assert.NotContains(t, msg, "/srv")
}
