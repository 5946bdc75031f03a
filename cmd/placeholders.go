package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/attrition-game/atk/internal/adapters/imagestore"
	"github.com/attrition-game/atk/internal/core/domain"
	"github.com/attrition-game/atk/internal/core/services"
	"github.com/attrition-game/atk/pkg/config"
	"github.com/attrition-game/atk/pkg/ui"
)

var (
	placeholdersOut     string
	placeholdersPalette string
	placeholdersSize    int
	placeholdersWatch   bool
	placeholdersQuiet   bool
)

var placeholdersCmd = &cobra.Command{
	Use:     "placeholders",
	Aliases: []string{"ph"},
	Short:   "Generate flat-colour placeholder images",
	Long: `Write one solid-colour PNG per palette entry, named <Label>.png.

The palette comes from --palette, then placeholders.palette in the config,
then the built-in planet table (Arid, Asteroid, Craters, Crystalline, Earthly).
Existing files are overwritten.

Use --watch to regenerate whenever the palette source changes.`,
	Example: `  atk placeholders
  atk placeholders --out public/planets --size 128
  atk placeholders --palette planets.yaml --watch`,
	Args: cobra.NoArgs,
	RunE: runPlaceholders,
}

var placeholdersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the palette that would be rendered",
	Args:  cobra.NoArgs,
	RunE:  runPlaceholdersList,
}

var placeholdersVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that generated images match the palette",
	Args:  cobra.NoArgs,
	RunE:  runPlaceholdersVerify,
}

func init() {
	flags := placeholdersCmd.PersistentFlags()
	flags.StringVarP(&placeholdersOut, "out", "o", "", "output directory (default: placeholders.output_dir)")
	flags.StringVar(&placeholdersPalette, "palette", "", "YAML palette file to use instead of the configured palette")
	flags.IntVar(&placeholdersSize, "size", 0, "square image size in pixels (default: placeholders.width x height)")

	placeholdersCmd.Flags().BoolVarP(&placeholdersWatch, "watch", "w", false, "regenerate when the palette source changes")
	placeholdersCmd.Flags().BoolVarP(&placeholdersQuiet, "quiet", "q", false, "only report errors")

	placeholdersCmd.AddCommand(placeholdersListCmd)
	placeholdersCmd.AddCommand(placeholdersVerifyCmd)
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := generatePlaceholders(ctx, out); err != nil {
		return err
	}
	if !placeholdersWatch {
		return nil
	}

	source := paletteSource()
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatMuted("Watching: "+source))
	fmt.Fprintln(out, ui.FormatMuted("Press Ctrl+C to stop"))

	return watchFile(ctx, source, 300*time.Millisecond, func() {
		if !placeholdersQuiet {
			fmt.Fprintln(out, ui.FormatInfo("Palette changed, regenerating..."))
		}
		if err := generatePlaceholders(ctx, out); err != nil {
			fmt.Fprintln(out, ui.FormatError("Regeneration failed: "+err.Error()))
			logger.WithError(err).Warn("placeholder regeneration failed")
		}
	})
}

func generatePlaceholders(ctx context.Context, out io.Writer) error {
	palette, err := currentPalette()
	if err != nil {
		return err
	}
	width, height := placeholderSize()
	dir := placeholderDir()

	svc := services.NewPlaceholderService(imagestore.NewPNGStore(dir))
	resp, err := svc.Generate(ctx, services.GenerateRequest{
		Palette: palette,
		Width:   width,
		Height:  height,
	})
	if err != nil {
		return err
	}

	if placeholdersQuiet {
		return nil
	}
	for _, f := range resp.Files {
		fmt.Fprintf(out, "%s %s %s\n", ui.Swatch(f.Color.Hex()), ui.IconImage, f.Path)
	}
	fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("Generated %d placeholder images (%dx%d) in %s",
		resp.Total, width, height, dir)))
	return nil
}

func runPlaceholdersList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	palette, err := currentPalette()
	if err != nil {
		return err
	}
	store := imagestore.NewPNGStore(placeholderDir())

	table := ui.NewTable([]ui.TableColumn{
		{Header: "LABEL"},
		{Header: "COLOUR"},
		{Header: "RGB", Align: "right"},
		{Header: ""},
		{Header: "FILE"},
	})
	for _, e := range palette {
		table.AddRow(
			e.Label,
			e.Color.Hex(),
			fmt.Sprintf("%d,%d,%d", e.Color.R, e.Color.G, e.Color.B),
			ui.Swatch(e.Color.Hex()),
			store.Path(e.Filename()),
		)
	}

	fmt.Fprint(out, table.Render())
	fmt.Fprintln(out, ui.FormatMuted(fmt.Sprintf("%d entries from %s", len(palette), paletteSourceName())))
	return nil
}

func runPlaceholdersVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	palette, err := currentPalette()
	if err != nil {
		return err
	}

	svc := services.NewPlaceholderService(imagestore.NewPNGStore(placeholderDir()))
	resp, err := svc.Verify(ctx, services.VerifyRequest{Palette: palette})
	if err != nil {
		return err
	}

	for _, m := range resp.Mismatches {
		if m.Missing {
			fmt.Fprintln(out, ui.FormatError(m.Label+": missing or unreadable"))
			continue
		}
		fmt.Fprintln(out, ui.FormatError(fmt.Sprintf("%s: want %s, got %s", m.Label, m.Want.Hex(), m.Got.Hex())))
	}

	if !resp.OK() {
		return fmt.Errorf("%d of %d placeholder images do not match the palette", len(resp.Mismatches), resp.Checked)
	}

	fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("All %d placeholder images match", resp.Checked)))
	return nil
}

// currentPalette re-reads the palette source from disk so watch mode sees edits
func currentPalette() (domain.Palette, error) {
	if placeholdersPalette != "" {
		return config.LoadPalette(placeholdersPalette)
	}

	cfg, err := config.Load(appDirs.ConfigPath)
	if err != nil {
		return nil, err
	}
	return cfg.Placeholders.ToPalette()
}

func paletteSource() string {
	if placeholdersPalette != "" {
		return placeholdersPalette
	}
	return appDirs.ConfigPath
}

func paletteSourceName() string {
	if placeholdersPalette != "" {
		return placeholdersPalette
	}
	if len(appConfig.Placeholders.Palette) > 0 {
		return appDirs.ConfigPath
	}
	return "built-in planet palette"
}

func placeholderDir() string {
	if placeholdersOut != "" {
		return placeholdersOut
	}
	return appConfig.Placeholders.OutputDir
}

func placeholderSize() (int, int) {
	if placeholdersSize > 0 {
		return placeholdersSize, placeholdersSize
	}
	return appConfig.Placeholders.Width, appConfig.Placeholders.Height
}

// watchFile calls onChange after path is written, debounced. The parent
// directory is watched because editors often replace files by rename.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounce, onChange)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}
