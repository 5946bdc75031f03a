package domain

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ReleaseDraft describes a release to be created on the hosting service.
// It is sent to the host verbatim.
type ReleaseDraft struct {
	Owner           string `json:"-"`
	Repo            string `json:"-"`
	TagName         string `json:"tag_name"`
	TargetCommitish string `json:"target_commitish"`
	Name            string `json:"name"`
	Body            string `json:"body"`
	Draft           bool   `json:"draft"`
	Prerelease      bool   `json:"prerelease"`
}

// Release is a release record as reported back by the host
type Release struct {
	ID      int64
	TagName string
	HTMLURL string

	// UploadURL still carries its URI template suffix, e.g. ".../assets{?name,label}"
	UploadURL string
}

// AssetUpload describes a binary file to attach to a release
type AssetUpload struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Asset is an uploaded release asset
type Asset struct {
	ID                 int64
	Name               string
	Size               int64
	BrowserDownloadURL string
}

// PublishResult is what a successful publish hands back to the caller
type PublishResult struct {
	ReleaseURL  string
	DownloadURL string
	ReleaseID   int64
}

// PublishRecord is one entry of the local publish history
type PublishRecord struct {
	Repository  string    `json:"repository"`
	Tag         string    `json:"tag"`
	ReleaseID   int64     `json:"release_id"`
	ReleaseURL  string    `json:"release_url"`
	AssetName   string    `json:"asset_name"`
	AssetSize   int64     `json:"asset_size"`
	DownloadURL string    `json:"download_url"`
	PublishedAt time.Time `json:"published_at"`
}

// ParseRepository splits an "owner/name" repository identifier
func ParseRepository(s string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", NewPreconditionError(fmt.Sprintf("repository must be in the form owner/name, got %q", s))
	}
	return parts[0], parts[1], nil
}

// StripURLTemplate removes the URI template portion of a hypermedia URL.
// "https://uploads.github.com/repos/o/r/releases/1/assets{?name,label}" becomes
// "https://uploads.github.com/repos/o/r/releases/1/assets".
func StripURLTemplate(u string) string {
	if i := strings.IndexByte(u, '{'); i >= 0 {
		return u[:i]
	}
	return u
}

// RenderTemplate replaces {version} placeholders in a title or body template
func RenderTemplate(tmpl, version string) string {
	return strings.ReplaceAll(tmpl, "{version}", version)
}
