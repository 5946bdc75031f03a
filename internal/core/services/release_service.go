package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	log "github.com/sirupsen/logrus"

	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/ports"
)

const assetContentType = "application/octet-stream"

// ReleaseService creates a release and attaches one installer asset to it
type ReleaseService struct {
	host       ports.ReleaseHost
	publishLog ports.PublishLog
	logger     log.FieldLogger
}

// NewReleaseService creates a new release service. publishLog may be nil.
func NewReleaseService(host ports.ReleaseHost, publishLog ports.PublishLog, logger log.FieldLogger) *ReleaseService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &ReleaseService{
		host:       host,
		publishLog: publishLog,
		logger:     logger,
	}
}

// PublishRequest represents a request to publish an installer
type PublishRequest struct {
	Repository    string // "owner/name"
	Version       string // tag, e.g. "v1.0.10"
	InstallerPath string
	Notes         string // optional; BodyTemplate is used when empty
	Token         string

	TargetCommitish string
	TitleTemplate   string // "{version}" is substituted
	BodyTemplate    string
	Draft           bool
	Prerelease      bool

	// Progress, when set, is called as the asset bytes are read
	Progress func(sent, total int64)
}

// Plan validates the request and returns the release descriptor that would
// be sent. It does not require a token and makes no remote call.
func (s *ReleaseService) Plan(req PublishRequest) (*domain.ReleaseDraft, error) {
	draft, _, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// Publish creates the release, then uploads the installer to the upload URL
// embedded in the create response. A failed upload leaves the release in place.
func (s *ReleaseService) Publish(ctx context.Context, req PublishRequest) (*domain.PublishResult, error) {
	if strings.TrimSpace(req.Token) == "" {
		return nil, domain.NewPreconditionError("access token not set")
	}

	draft, info, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(req.InstallerPath)
	if err != nil {
		return nil, domain.NewPreconditionError(fmt.Sprintf("installer not readable: %v", err))
	}
	defer file.Close()

	logger := s.logger.WithField("repo", req.Repository).WithField("tag", draft.TagName)
	logger.Debug("creating release")

	release, err := s.host.CreateRelease(ctx, req.Token, *draft)
	if err != nil {
		return nil, err
	}
	logger.WithField("release_id", release.ID).Debugf("release created: %s", release.HTMLURL)

	uploadURL := domain.StripURLTemplate(release.UploadURL)
	if uploadURL == "" {
		return nil, fmt.Errorf("%w: response carried no upload URL", domain.ErrReleaseCreation)
	}

	var content io.Reader = file
	if req.Progress != nil {
		content = &progressReader{r: file, total: info.Size(), report: req.Progress}
	}

	upload := domain.AssetUpload{
		Name:        filepath.Base(req.InstallerPath),
		Size:        info.Size(),
		ContentType: assetContentType,
		Content:     content,
	}

	logger.WithField("asset", upload.Name).WithField("size", upload.Size).Debugf("uploading asset to %s", uploadURL)
	asset, err := s.host.UploadAsset(ctx, req.Token, uploadURL, upload)
	if err != nil {
		return nil, fmt.Errorf("release %s was created but its asset was not attached: %w", release.HTMLURL, err)
	}

	result := &domain.PublishResult{
		ReleaseURL:  release.HTMLURL,
		DownloadURL: asset.BrowserDownloadURL,
		ReleaseID:   release.ID,
	}

	s.record(ctx, req, upload, result)

	return result, nil
}

// prepare runs every local precondition and builds the release descriptor
func (s *ReleaseService) prepare(req PublishRequest) (*domain.ReleaseDraft, os.FileInfo, error) {
	owner, repo, err := domain.ParseRepository(req.Repository)
	if err != nil {
		return nil, nil, err
	}

	version := strings.TrimSpace(req.Version)
	if version == "" {
		return nil, nil, domain.NewPreconditionError("version tag is empty")
	}

	if req.InstallerPath == "" {
		return nil, nil, domain.NewPreconditionError("installer path is empty")
	}
	info, err := os.Stat(req.InstallerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.NewPreconditionError("installer not found: " + req.InstallerPath)
		}
		return nil, nil, domain.NewPreconditionError(fmt.Sprintf("installer not accessible: %v", err))
	}
	if !info.Mode().IsRegular() {
		return nil, nil, domain.NewPreconditionError("installer is not a regular file: " + req.InstallerPath)
	}

	target := req.TargetCommitish
	if target == "" {
		target = "main"
	}

	body := req.Notes
	if body == "" {
		body = domain.RenderTemplate(req.BodyTemplate, version)
	}

	draft := &domain.ReleaseDraft{
		Owner:           owner,
		Repo:            repo,
		TagName:         version,
		TargetCommitish: target,
		Name:            domain.RenderTemplate(req.TitleTemplate, version),
		Body:            body,
		Draft:           req.Draft,
		Prerelease:      req.Prerelease,
	}
	if draft.Name == "" {
		draft.Name = version
	}

	return draft, info, nil
}

func (s *ReleaseService) record(ctx context.Context, req PublishRequest, upload domain.AssetUpload, result *domain.PublishResult) {
	if s.publishLog == nil {
		return
	}
	rec := domain.PublishRecord{
		Repository:  req.Repository,
		Tag:         req.Version,
		ReleaseID:   result.ReleaseID,
		ReleaseURL:  result.ReleaseURL,
		AssetName:   upload.Name,
		AssetSize:   upload.Size,
		DownloadURL: result.DownloadURL,
		PublishedAt: time.Now().UTC(),
	}
	if err := s.publishLog.Append(ctx, rec); err != nil {
		s.logger.WithError(err).Warn("failed to record publish in history")
	}
}

// IsPrereleaseTag reports whether tag is a semantic version with a
// prerelease component, e.g. "v1.1.0-beta.2"
func IsPrereleaseTag(tag string) bool {
	v, err := semver.NewVersion(tag)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
