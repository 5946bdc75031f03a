package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/ports/mocks"
)

func writeInstaller(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create installer: %v", err)
	}
	return path
}

func baseRequest(path string) PublishRequest {
	return PublishRequest{
		Repository:    "owner/repo",
		Version:       "v1.0.10",
		InstallerPath: path,
		Token:         "secret",
		TitleTemplate: "Attrition {version}",
		BodyTemplate:  "Attrition Desktop Release {version}",
	}
}

func TestReleaseService_Publish_Success(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	history := mocks.NewMockPublishLog()
	svc := NewReleaseService(host, history, nil)

	content := []byte("installer bytes")
	path := writeInstaller(t, "Attrition-Setup-1.0.10.exe", content)

	result, err := svc.Publish(context.Background(), baseRequest(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ReleaseID != 42 {
		t.Errorf("expected release id 42, got %d", result.ReleaseID)
	}
	if result.ReleaseURL != host.Release.HTMLURL {
		t.Errorf("unexpected release url: %s", result.ReleaseURL)
	}
	if !strings.HasSuffix(result.DownloadURL, "/Attrition-Setup-1.0.10.exe") {
		t.Errorf("unexpected download url: %s", result.DownloadURL)
	}

	creates := host.GetCreateCalls()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(creates))
	}
	draft := creates[0]
	if draft.Owner != "owner" || draft.Repo != "repo" {
		t.Errorf("unexpected repository: %s/%s", draft.Owner, draft.Repo)
	}
	if draft.TagName != "v1.0.10" {
		t.Errorf("unexpected tag: %s", draft.TagName)
	}
	if draft.TargetCommitish != "main" {
		t.Errorf("expected default target 'main', got %s", draft.TargetCommitish)
	}
	if draft.Name != "Attrition v1.0.10" {
		t.Errorf("unexpected title: %s", draft.Name)
	}
	if draft.Body != "Attrition Desktop Release v1.0.10" {
		t.Errorf("unexpected body: %s", draft.Body)
	}
	if draft.Draft || draft.Prerelease {
		t.Error("expected draft and prerelease to be false")
	}

	uploads := host.GetUploadCalls()
	if len(uploads) != 1 {
		t.Fatalf("expected 1 upload call, got %d", len(uploads))
	}
	up := uploads[0]
	if up.URL != "https://uploads.github.com/repos/owner/repo/releases/42/assets" {
		t.Errorf("upload URL should have its template stripped, got %s", up.URL)
	}
	if up.Name != "Attrition-Setup-1.0.10.exe" {
		t.Errorf("unexpected asset name: %s", up.Name)
	}
	if up.ContentType != "application/octet-stream" {
		t.Errorf("unexpected content type: %s", up.ContentType)
	}
	if string(up.Content) != string(content) {
		t.Error("uploaded content doesn't match installer")
	}
	if up.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), up.Size)
	}
	if up.Token != "secret" {
		t.Errorf("token not passed to upload: %q", up.Token)
	}

	records, _ := history.List(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected publish to be recorded, got %d records", len(records))
	}
	if records[0].Tag != "v1.0.10" || records[0].ReleaseID != 42 {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestReleaseService_Publish_MissingInstaller(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(filepath.Join(t.TempDir(), "missing.exe"))
	_, err := svc.Publish(context.Background(), req)

	if err == nil {
		t.Fatal("expected error for missing installer")
	}
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
	if host.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", host.TotalCalls())
	}
}

func TestReleaseService_Publish_MissingToken(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	req.Token = ""

	_, err := svc.Publish(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Errorf("expected precondition error, got %v", err)
	}
	if host.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", host.TotalCalls())
	}
}

func TestReleaseService_Publish_InstallerIsDirectory(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	_, err := svc.Publish(context.Background(), baseRequest(t.TempDir()))
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if host.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", host.TotalCalls())
	}
}

func TestReleaseService_Publish_BadRepository(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	req.Repository = "not-a-repo"

	_, err := svc.Publish(context.Background(), req)
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if host.TotalCalls() != 0 {
		t.Errorf("expected no remote calls, got %d", host.TotalCalls())
	}
}

func TestReleaseService_Publish_CreateFails(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	host.SetCreateError(&domain.RemoteError{
		Op:         domain.ErrReleaseCreation,
		StatusCode: 422,
		Body:       `{"message":"Validation Failed","errors":[{"code":"already_exists"}]}`,
	})
	history := mocks.NewMockPublishLog()
	svc := NewReleaseService(host, history, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	_, err := svc.Publish(context.Background(), req)

	if !errors.Is(err, domain.ErrReleaseCreation) {
		t.Fatalf("expected release creation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "already_exists") {
		t.Errorf("expected response body in error, got %v", err)
	}
	if len(host.GetUploadCalls()) != 0 {
		t.Error("upload must not be attempted after a failed create")
	}
	if records, _ := history.List(context.Background()); len(records) != 0 {
		t.Error("failed publish must not be recorded")
	}
}

func TestReleaseService_Publish_UploadFails(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	host.SetUploadError(&domain.RemoteError{
		Op:         domain.ErrAssetUpload,
		StatusCode: 500,
		Body:       "server error",
	})
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	_, err := svc.Publish(context.Background(), req)

	if !errors.Is(err, domain.ErrAssetUpload) {
		t.Fatalf("expected asset upload error, got %v", err)
	}
	if !strings.Contains(err.Error(), host.Release.HTMLURL) {
		t.Errorf("error should name the release left behind: %v", err)
	}
	if len(host.GetCreateCalls()) != 1 {
		t.Error("expected exactly one create call")
	}
}

func TestReleaseService_Publish_NotesOverrideBody(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	req.Notes = "Fixed the fleet combat bug"
	req.TargetCommitish = "release"
	req.Draft = true
	req.Prerelease = true

	if _, err := svc.Publish(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft := host.GetCreateCalls()[0]
	if draft.Body != "Fixed the fleet combat bug" {
		t.Errorf("notes should be used as body, got %q", draft.Body)
	}
	if draft.TargetCommitish != "release" {
		t.Errorf("unexpected target: %s", draft.TargetCommitish)
	}
	if !draft.Draft || !draft.Prerelease {
		t.Error("expected draft and prerelease flags to be passed through")
	}
}

func TestReleaseService_Publish_Progress(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	content := make([]byte, 64*1024)
	req := baseRequest(writeInstaller(t, "big.exe", content))

	var lastSent, lastTotal int64
	req.Progress = func(sent, total int64) {
		lastSent, lastTotal = sent, total
	}

	if _, err := svc.Publish(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lastTotal != int64(len(content)) {
		t.Errorf("expected total %d, got %d", len(content), lastTotal)
	}
	if lastSent != lastTotal {
		t.Errorf("expected all bytes reported, got %d of %d", lastSent, lastTotal)
	}
}

func TestReleaseService_Publish_HistoryFailureIgnored(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	history := mocks.NewMockPublishLog()
	history.SetShouldFail(true)
	svc := NewReleaseService(host, history, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	if _, err := svc.Publish(context.Background(), req); err != nil {
		t.Fatalf("history failure must not fail the publish: %v", err)
	}
}

func TestReleaseService_Plan(t *testing.T) {
	host := mocks.NewMockReleaseHost()
	svc := NewReleaseService(host, nil, nil)

	req := baseRequest(writeInstaller(t, "setup.exe", []byte("x")))
	req.Token = ""

	draft, err := svc.Plan(req)
	if err != nil {
		t.Fatalf("plan should not need a token: %v", err)
	}
	if draft.TagName != "v1.0.10" || draft.Name != "Attrition v1.0.10" {
		t.Errorf("unexpected draft: %+v", draft)
	}
	if host.TotalCalls() != 0 {
		t.Error("plan must not call the host")
	}
}

func TestIsPrereleaseTag(t *testing.T) {
	tests := []struct {
		tag      string
		expected bool
	}{
		{"v1.0.10", false},
		{"1.2.3", false},
		{"v1.1.0-beta.2", true},
		{"v2.0.0-rc1", true},
		{"nightly", false},
	}

	for _, tt := range tests {
		if got := IsPrereleaseTag(tt.tag); got != tt.expected {
			t.Errorf("IsPrereleaseTag(%q) = %v, want %v", tt.tag, got, tt.expected)
		}
	}
}
