package application

import (
	"errors"
	"net/url"
	"strings"

	"github.com/artem13815/recruitment/pkg/storage/files"
)

type ReferenceKind int

const (
	// LocalFile is a bare object name inside the storage root.
	LocalFile ReferenceKind = iota + 1
	// LegacyRemoteURL was written by the remote object store generation and
	// has to be migrated before it can be served.
	LegacyRemoteURL
)

var ErrMalformedReference = errors.New("malformed resume reference")

// Reference is the parsed form of Application.ResumeReference.
type Reference struct {
	Kind ReferenceKind
	Name string
	URL  *url.URL
}

// ParseReference classifies a stored reference. It never guesses: a value is
// either an http(s) URL or a bare file name, anything else is malformed.
func ParseReference(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, ErrMalformedReference
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return Reference{Kind: LegacyRemoteURL, URL: u}, nil
		}
		return Reference{}, ErrMalformedReference
	}
	if err := files.ValidateKey(raw); err != nil {
		return Reference{}, ErrMalformedReference
	}
	return Reference{Kind: LocalFile, Name: raw}, nil
}
