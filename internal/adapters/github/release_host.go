package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v52/github"
	log "github.com/sirupsen/logrus"

	"github.com/attrition-game/atk/internal/core/domain"
)

const (
	DefaultAPIURL    = "https://api.github.com/"
	DefaultUserAgent = "Attrition-Release-Bot"
)

// Options configures a ReleaseHost
type Options struct {
	APIURL     string // default: https://api.github.com/
	UserAgent  string // default: Attrition-Release-Bot
	HTTPClient *http.Client
	Logger     log.FieldLogger
}

// ReleaseHost talks to the GitHub REST API. Requests are built with go-github
// and executed directly so that non-201 bodies can be reported verbatim.
type ReleaseHost struct {
	client     *gh.Client
	httpClient *http.Client
	logger     log.FieldLogger
}

// NewReleaseHost creates a GitHub-backed release host
func NewReleaseHost(opts Options) (*ReleaseHost, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	client := gh.NewClient(httpClient)

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	client.BaseURL = base
	// Upload URLs come back absolute from the create call; this only has to be
	// a valid base for NewUploadRequest.
	client.UploadURL = base

	client.UserAgent = DefaultUserAgent
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	return &ReleaseHost{
		client:     client,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CreateRelease issues POST /repos/{owner}/{repo}/releases and requires 201 Created
func (h *ReleaseHost) CreateRelease(ctx context.Context, token string, draft domain.ReleaseDraft) (*domain.Release, error) {
	payload := &gh.RepositoryRelease{
		TagName:         gh.String(draft.TagName),
		TargetCommitish: gh.String(draft.TargetCommitish),
		Name:            gh.String(draft.Name),
		Body:            gh.String(draft.Body),
		Draft:           gh.Bool(draft.Draft),
		Prerelease:      gh.Bool(draft.Prerelease),
	}

	path := fmt.Sprintf("repos/%s/%s/releases", url.PathEscape(draft.Owner), url.PathEscape(draft.Repo))
	req, err := h.client.NewRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build create-release request: %w", err)
	}

	var created gh.RepositoryRelease
	if err := h.do(ctx, req, token, domain.ErrReleaseCreation, &created); err != nil {
		return nil, err
	}

	return &domain.Release{
		ID:        created.GetID(),
		TagName:   created.GetTagName(),
		HTMLURL:   created.GetHTMLURL(),
		UploadURL: created.GetUploadURL(),
	}, nil
}

// UploadAsset POSTs the raw asset bytes to uploadURL?name=<name> and requires 201 Created
func (h *ReleaseHost) UploadAsset(ctx context.Context, token string, uploadURL string, upload domain.AssetUpload) (*domain.Asset, error) {
	target, err := url.Parse(uploadURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upload URL %q: %w", uploadURL, err)
	}
	if !target.IsAbs() {
		return nil, fmt.Errorf("upload URL %q is not absolute", uploadURL)
	}
	q := target.Query()
	q.Set("name", upload.Name)
	target.RawQuery = q.Encode()

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := h.client.NewUploadRequest(target.String(), upload.Content, upload.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}

	var asset gh.ReleaseAsset
	if err := h.do(ctx, req, token, domain.ErrAssetUpload, &asset); err != nil {
		return nil, err
	}

	return &domain.Asset{
		ID:                 asset.GetID(),
		Name:               asset.GetName(),
		Size:               int64(asset.GetSize()),
		BrowserDownloadURL: asset.GetBrowserDownloadURL(),
	}, nil
}

// do executes req and decodes a 201 response into v. Any other status becomes
// a RemoteError tagged with op.
func (h *ReleaseHost) do(ctx context.Context, req *http.Request, token string, op error, v interface{}) error {
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "token "+token)

	logger := h.logger.WithField("method", req.Method).WithField("url", req.URL.Redacted())
	logger.Debug("sending request")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", op, err)
	}

	logger.WithField("status", resp.StatusCode).Debug("received response")

	if resp.StatusCode != http.StatusCreated {
		return &domain.RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(bytes.NewReader(body)).Decode(v); err != nil {
		return fmt.Errorf("%w: unexpected response body: %v", op, err)
	}
	return nil
}
