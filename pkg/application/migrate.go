package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/artem13815/recruitment/pkg/storage/files"
)

// Fetcher downloads the bytes behind a legacy remote reference.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// HTTPFetcher fetches legacy objects over plain HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u.Redacted(), resp.StatusCode)
	}
	return resp.Body, nil
}

type MigrationAction string

const (
	// ActionRelinked: the object already sits in storage under the legacy name.
	ActionRelinked MigrationAction = "relinked"
	// ActionImported: the object was downloaded and stored under a new key.
	ActionImported MigrationAction = "imported"
	// ActionSkipped: nothing could be done; Err says why.
	ActionSkipped MigrationAction = "skipped"
)

type MigrationResult struct {
	ApplicationID string
	From          string
	To            string
	Action        MigrationAction
	Err           error
}

type MigrateOptions struct {
	// DryRun reports what would happen without writing anything.
	DryRun bool
	// Fetcher is optional; without it only relinking is possible.
	Fetcher Fetcher
}

// MigrateLegacyReferences rewrites remote URL references into storage keys.
// Each application is handled independently; a failure never aborts the run.
func MigrateLegacyReferences(ctx context.Context, repo Repository, store files.Storage, opts MigrateOptions) ([]MigrationResult, error) {
	apps, err := repo.ListLegacyReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("list legacy references: %w", err)
	}
	results := make([]MigrationResult, 0, len(apps))
	for _, a := range apps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, migrateOne(ctx, repo, store, a, opts))
	}
	return results, nil
}

func migrateOne(ctx context.Context, repo Repository, store files.Storage, a Application, opts MigrateOptions) MigrationResult {
	res := MigrationResult{ApplicationID: a.ID.String(), From: a.ResumeReference, Action: ActionSkipped}
	ref, err := ParseReference(a.ResumeReference)
	if err != nil {
		res.Err = err
		return res
	}
	if ref.Kind != LegacyRemoteURL {
		res.Err = errors.New("reference is not a remote URL")
		return res
	}

	name := legacyName(ref.URL, a.ResumeFilename)
	if name != "" {
		if _, err := store.Stat(ctx, name); err == nil {
			res.Action, res.To = ActionRelinked, name
			if !opts.DryRun {
				res.Err = repo.ReplaceResumeReference(ctx, a.ID, a.ResumeReference, name)
			}
			return res
		} else if !errors.Is(err, files.ErrNotFound) {
			res.Err = err
			return res
		}
	}

	if opts.Fetcher == nil {
		res.Err = files.ErrNotFound
		return res
	}
	if opts.DryRun {
		res.Action = ActionImported
		return res
	}
	body, err := opts.Fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		res.Err = err
		return res
	}
	defer body.Close()

	filename := a.ResumeFilename
	if filename == "" {
		filename = name
	}
	key, err := store.Save(ctx, a.CandidateID, filename, body)
	if err != nil {
		res.Err = err
		return res
	}
	if err := repo.ReplaceResumeReference(ctx, a.ID, a.ResumeReference, key); err != nil {
		_ = store.Delete(context.WithoutCancel(ctx), key)
		res.Err = err
		return res
	}
	res.Action, res.To = ActionImported, key
	return res
}

// legacyName is the last path segment of the URL, given the extension of the
// original upload when the remote name has none.
func legacyName(u *url.URL, filename string) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || files.ValidateKey(name) != nil {
		return ""
	}
	if filepath.Ext(name) == "" {
		name += strings.ToLower(filepath.Ext(filename))
	}
	return name
}
