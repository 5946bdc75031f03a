package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/services"
	"github.com/attrition-game/atk/pkg/config"
	"github.com/attrition-game/atk/pkg/ui"
)

var (
	releaseDraft      bool
	releasePrerelease bool
	releaseTarget     string
	releaseTitle      string
	releaseDryRun     bool
	releaseCopy       bool
	releaseProgress   bool
)

var releaseCmd = &cobra.Command{
	Use:   "release <repo> <version> <installer_path> [release_notes]",
	Short: "Create a GitHub release and upload an installer to it",
	Long: `Create a release on GitHub and attach an installer as its only asset.

The release is tagged <version> on the configured target branch. Notes default
to "Attrition Desktop Release <version>" when omitted. The access token is read
from GITHUB_PAT, then GITHUB_TOKEN (see release.token_env in the config).

If <installer_path> is a directory you will be asked to pick a file from it.

Tags with a semver pre-release suffix (v1.2.0-beta.1) are marked as
pre-releases unless --prerelease is given explicitly.`,
	Example: `  atk release attrition-game/attrition v1.0.10 dist/Attrition-Setup-1.0.10.exe
  atk release attrition-game/attrition v1.1.0-rc.1 dist/ "Release candidate" --progress
  atk release attrition-game/attrition v1.0.10 dist/setup.exe --dry-run`,
	Args: cobra.RangeArgs(3, 4),
	RunE: runRelease,
}

func init() {
	releaseCmd.Flags().BoolVar(&releaseDraft, "draft", false, "create the release as a draft")
	releaseCmd.Flags().BoolVar(&releasePrerelease, "prerelease", false, "mark the release as a pre-release (default: inferred from the tag)")
	releaseCmd.Flags().StringVar(&releaseTarget, "target", "", "branch or commit the tag is created from (default: release.target_commitish)")
	releaseCmd.Flags().StringVar(&releaseTitle, "title", "", "release title, {version} is substituted (default: release.title_template)")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "print the release that would be created and exit")
	releaseCmd.Flags().BoolVarP(&releaseCopy, "copy", "c", false, "copy the download URL to the clipboard")
	releaseCmd.Flags().BoolVarP(&releaseProgress, "progress", "p", false, "show an upload progress bar")
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	repo, version, installerPath := args[0], args[1], args[2]
	notes := ""
	if len(args) > 3 {
		notes = args[3]
	}

	if info, err := os.Stat(installerPath); err == nil && info.IsDir() {
		picked, err := pickInstaller(installerPath)
		if err != nil {
			return err
		}
		installerPath = picked
	}

	req := services.PublishRequest{
		Repository:      repo,
		Version:         version,
		InstallerPath:   installerPath,
		Notes:           notes,
		TargetCommitish: appConfig.Release.TargetCommitish,
		TitleTemplate:   appConfig.Release.TitleTemplate,
		BodyTemplate:    appConfig.Release.BodyTemplate,
		Draft:           releaseDraft,
		Prerelease:      releasePrerelease,
	}
	if releaseTarget != "" {
		req.TargetCommitish = releaseTarget
	}
	if releaseTitle != "" {
		req.TitleTemplate = releaseTitle
	}
	if !cmd.Flags().Changed("prerelease") {
		req.Prerelease = services.IsPrereleaseTag(version)
	}

	if releaseDryRun {
		return printPlan(out, req)
	}

	req.Token = config.ResolveToken(appConfig.Release.TokenEnv)
	if req.Token == "" {
		return domain.NewPreconditionError(fmt.Sprintf(
			"%s environment variable not set (create a token at https://github.com/settings/tokens)",
			strings.Join(appConfig.Release.TokenEnv, " or ")))
	}

	fmt.Fprintln(out, ui.FormatRocket(fmt.Sprintf("Creating release %s for %s...", version, repo)))
	if info, err := os.Stat(installerPath); err == nil {
		fmt.Fprintln(out, ui.FormatPackage(fmt.Sprintf("Uploading installer: %s (%s)",
			filepath.Base(installerPath), ui.FormatBytes(info.Size()))))
	}

	var result *domain.PublishResult
	var err error
	if releaseProgress {
		bar := ui.NewTransferProgress("Uploading "+filepath.Base(installerPath), out)
		req.Progress = bar.Report
		err = bar.Run(func() error {
			var publishErr error
			result, publishErr = releaseService.Publish(ctx, req)
			return publishErr
		})
	} else {
		result, err = releaseService.Publish(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.FormatSuccess("Release published"))
	fmt.Fprintln(out, ui.RenderKeyValue("Release URL", result.ReleaseURL))
	fmt.Fprintln(out, ui.RenderKeyValue("Download URL", result.DownloadURL))
	fmt.Fprintln(out, ui.RenderKeyValue("Release ID", fmt.Sprintf("%d", result.ReleaseID)))

	if releaseCopy {
		if err := clipboard.WriteAll(result.DownloadURL); err != nil {
			fmt.Fprintln(out, ui.FormatWarning("Could not copy to clipboard: "+err.Error()))
		} else {
			fmt.Fprintln(out, ui.FormatLink("Download URL copied to clipboard"))
		}
	}

	return nil
}

// printPlan shows the release descriptor without touching the network
func printPlan(out io.Writer, req services.PublishRequest) error {
	draft, err := releaseService.Plan(req)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode release: %w", err)
	}

	fmt.Fprintln(out, ui.FormatInfo(fmt.Sprintf("Dry run: POST %srepos/%s/%s/releases",
		withSlash(appConfig.Release.APIURL), draft.Owner, draft.Repo)))
	fmt.Fprintln(out, ui.HighlightJSON(string(data)))

	if info, err := os.Stat(req.InstallerPath); err == nil {
		fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("asset: %s (%s, application/octet-stream)",
			filepath.Base(req.InstallerPath), ui.FormatBytes(info.Size()))))
	}
	return nil
}

// pickInstaller lets the user choose a regular file from dir, newest first
func pickInstaller(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	type candidate struct {
		name string
		info os.FileInfo
	}
	var files []candidate
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: e.Name(), info: info})
	}
	if len(files) == 0 {
		return "", domain.NewPreconditionError(fmt.Sprintf("no installer files in %s", dir))
	}
	if len(files) == 1 {
		return filepath.Join(dir, files[0].name), nil
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].info.ModTime().After(files[j].info.ModTime())
	})

	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string { return files[i].name },
		fuzzyfinder.WithPromptString("Installer > "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			f := files[i]
			return fmt.Sprintf("%s\n\nSize:     %s\nModified: %s",
				f.name, ui.FormatBytes(f.info.Size()), f.info.ModTime().Format("2006-01-02 15:04"))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", domain.NewPreconditionError("no installer selected")
		}
		return "", fmt.Errorf("installer picker failed: %w", err)
	}

	return filepath.Join(dir, files[idx].name), nil
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
