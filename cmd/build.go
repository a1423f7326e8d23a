package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/latex"
	"github.com/kozaktomas/photo-report/internal/photo"
	"github.com/kozaktomas/photo-report/internal/printview"
	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var buildCmd = &cobra.Command{
	Use:   "build <folder-path> [folder-path...]",
	Short: "Build a report from folders of photos",
	Long: `Build a printable report from the photos in one or more folders.

Photos appear in the order they are found: folders in the order given, files
sorted by name. Use -r to include subdirectories.

Report fields can come from a YAML manifest and from flags; flags win.
The manifest may also set captions by file name:

  title: Roof inspection
  client: ACME
  date: 2026-04-02
  project_code: R-12
  notes: |
    North side checked from the scaffold.
  captions:
    IMG_0001.jpg: Chimney flashing

Example:
  photo-report build ./site-visit
  photo-report build -r ./site-visit --title "Roof inspection" --format pdf
  photo-report build ./site-visit --metadata report.yaml --format tex -o ./out`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
	buildCmd.Flags().StringP("output", "o", "", "Output file, or directory for --format tex (default derived from the title)")
	buildCmd.Flags().String("format", "html", "Output format: html, pdf or tex")
	buildCmd.Flags().String("metadata", "", "YAML file with report fields and captions")
	buildCmd.Flags().String("title", "", "Report title")
	buildCmd.Flags().String("client", "", "Client name")
	buildCmd.Flags().String("date", "", "Report date (default today)")
	buildCmd.Flags().String("project-code", "", "Project code")
	buildCmd.Flags().String("notes", "", "Free-form notes")
}

// buildManifest is the YAML file accepted by --metadata.
type buildManifest struct {
	report.MetadataPatch `yaml:",inline"`
	Captions             map[string]string `yaml:"captions"`
}

// supportedExtensions lists the file types the decoder understands.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
}

// isImageFile checks if a file has a supported image extension
func isImageFile(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// collectImageFiles lists the image files in each folder, in folder order
// and then by name.
func collectImageFiles(folders []string, recursive bool) ([]string, error) {
	var paths []string
	for _, folder := range folders {
		info, err := os.Stat(folder)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", folder, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", folder)
		}

		if recursive {
			err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					paths = append(paths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", folder, err)
			}
			continue
		}

		entries, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("cannot read folder %s: %w", folder, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && isImageFile(entry.Name()) {
				paths = append(paths, filepath.Join(folder, entry.Name()))
			}
		}
	}
	return paths, nil
}

// loadManifest reads a manifest file. An empty path yields an empty manifest.
func loadManifest(path string) (*buildManifest, error) {
	m := &buildManifest{}
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// metadataFlags collects the report fields set on the command line.
func metadataFlags(cmd *cobra.Command) report.MetadataPatch {
	return report.MetadataPatch{
		Title:       optionalString(cmd, "title"),
		Client:      optionalString(cmd, "client"),
		Date:        optionalString(cmd, "date"),
		ProjectCode: optionalString(cmd, "project-code"),
		Notes:       optionalString(cmd, "notes"),
	}
}

// applyCaptions sets captions by photo file name and returns the names
// that matched no photo.
func applyCaptions(rep *report.Report, captions map[string]string) []string {
	matched := make(map[string]bool, len(captions))
	for _, p := range rep.Photos.Photos() {
		if caption, ok := captions[p.Name]; ok {
			rep.Photos.UpdateCaption(p.ID, caption)
			matched[p.Name] = true
		}
	}

	var unused []string
	for name := range captions {
		if !matched[name] {
			unused = append(unused, name)
		}
	}
	slices.Sort(unused)
	return unused
}

// outputPath picks the output location. The tex format writes a directory.
func outputPath(explicit, title, format string) string {
	if explicit != "" {
		return explicit
	}
	if format == "tex" {
		return printview.FileName(title, "")
	}
	return printview.FileName(title, "."+format)
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func runBuild(cmd *cobra.Command, args []string) error {
	format := mustGetString(cmd, "format")
	if format != "html" && format != "pdf" && format != "tex" {
		return fmt.Errorf("unknown format %q (want html, pdf or tex)", format)
	}

	cfg := config.Load()

	manifest, err := loadManifest(mustGetString(cmd, "metadata"))
	if err != nil {
		return err
	}

	paths, err := collectImageFiles(args, mustGetBool(cmd, "recursive"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no image files found in the specified folders")
	}
	fmt.Printf("Found %d image(s) in %d folder(s)\n", len(paths), len(args))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	blobs := make([]photo.Blob, len(paths))
	for i, path := range paths {
		blobs[i] = photo.NewFileBlob(path)
	}

	bar := newProgressBar(len(blobs), "Decoding")
	batch, err := photo.NewFactory(cfg.Upload).BuildWithProgress(ctx, blobs, func() { bar.Add(1) })
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading photos: %w", err)
	}
	for _, d := range batch.Dropped {
		fmt.Printf("Skipped: %s: %s\n", d.Name, d.Reason)
	}
	if len(batch.Photos) == 0 {
		return fmt.Errorf("none of the files could be read")
	}

	rep := report.New(photo.NewID(), time.Now())
	rep.Photos.Add(batch.Photos)
	rep.Info.Patch(manifest.MetadataPatch)
	rep.Info.Patch(metadataFlags(cmd))
	for _, name := range applyCaptions(rep, manifest.Captions) {
		fmt.Printf("Warning: caption for %s matches no photo\n", name)
	}

	opts := printview.OptionsFromConfig(cfg.Report)
	snap := rep.Snapshot()
	out := outputPath(mustGetString(cmd, "output"), printview.Title(snap.Metadata, opts.DefaultTitle), format)

	switch format {
	case "html":
		err = writeHTML(out, snap, opts)
	case "pdf":
		err = writePDF(ctx, out, snap, cfg, opts)
	case "tex":
		err = writeTeX(out, snap, cfg, opts)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Report with %d photo(s) written to %s\n", len(snap.Photos), out)
	return nil
}

func writeHTML(out string, snap report.Snapshot, opts printview.Options) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := printview.Render(f, snap, opts); err != nil {
		f.Close()
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}

func writePDF(ctx context.Context, out string, snap report.Snapshot, cfg *config.Config, opts printview.Options) error {
	gen := latex.NewGenerator(cfg.PDF, opts)
	fmt.Printf("Compiling PDF with %s...\n", cfg.PDF.Binary)
	pdf, exportReport, err := gen.GeneratePDF(ctx, snap)
	if err != nil {
		return fmt.Errorf("generating PDF: %w", err)
	}
	printExportWarnings(exportReport)
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("%d page(s)\n", exportReport.PageCount)
	return nil
}

func writeTeX(out string, snap report.Snapshot, cfg *config.Config, opts printview.Options) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	texPath, exportReport, err := latex.NewGenerator(cfg.PDF, opts).WriteSources(snap, out)
	if err != nil {
		return fmt.Errorf("writing LaTeX sources: %w", err)
	}
	printExportWarnings(exportReport)
	fmt.Printf("Compile with: %s %s (run it twice)\n", cfg.PDF.Binary, filepath.Base(texPath))
	return nil
}

func printExportWarnings(r *latex.ExportReport) {
	if r == nil {
		return
	}
	for _, w := range r.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
}
