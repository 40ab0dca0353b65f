package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevinbotlib/dashboard/internal/engine"
	"github.com/kevinbotlib/dashboard/internal/export"
	"github.com/kevinbotlib/dashboard/internal/importer"
	"github.com/kevinbotlib/dashboard/internal/model"
	"github.com/kevinbotlib/dashboard/internal/project"
)

// newLayoutsCmd creates the named layout management command.
func newLayoutsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "Manage saved dashboard layouts",
	}

	cmd.AddCommand(newLayoutsListCmd(opts))
	cmd.AddCommand(newLayoutsExportCmd(opts))
	cmd.AddCommand(newLayoutsImportCmd(opts))
	cmd.AddCommand(newLayoutsDeleteCmd(opts))

	return cmd
}

// withLibrary opens the layout library for the duration of fn.
func withLibrary(opts *options, fn func(*project.Library) error) error {
	lib, err := project.OpenLibrary(opts.libraryPath)
	if err != nil {
		return fmt.Errorf("open layout library: %w", err)
	}
	defer lib.Close()
	return fn(lib)
}

func newLayoutsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withLibrary(opts, func(lib *project.Library) error {
				entries, err := lib.List()
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					printInfo(out, "No saved layouts")
					return nil
				}
				printTitle(out, "Layouts")
				for _, e := range entries {
					printKeyValue(out, e.Name, fmt.Sprintf("%s widgets on %dx%d, saved %s",
						styleNumber.Render(fmt.Sprint(e.Widgets)), e.Rows, e.Cols,
						e.UpdatedAt.Local().Format("2006-01-02 15:04")))
				}
				return nil
			})
		},
	}
}

func newLayoutsExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME FILE",
		Short: "Export a saved layout as PDF, XLSX, CSV or JSON",
		Long:  `Export a saved layout. The format follows the extension of FILE: .pdf, .xlsx, .csv or .json.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			out := cmd.OutOrStdout()
			return withLibrary(opts, func(lib *project.Library) error {
				stored, err := lib.Load(name)
				if err != nil {
					return err
				}
				settings := loadSettings(cmd.Context(), opts.configPath)
				settings.Rows, settings.Cols = stored.Rows, stored.Cols
				settings.Layout = stored.Records
				if err := exportLayout(path, settings); err != nil {
					return err
				}
				printSuccess(out, "Exported %s (%d widgets)", name, len(stored.Records))
				printFile(out, path)
				return nil
			})
		},
	}
}

// exportLayout writes s.Layout to path in the format named by its extension.
func exportLayout(path string, s model.Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return export.ExportPDF(path, s, s.Layout)
	case ".xlsx":
		return export.ExportXLSX(path, s, s.Layout)
	case ".csv":
		return export.ExportCSV(path, s.Layout)
	case ".json":
		records := s.Layout
		if records == nil {
			records = []model.LayoutRecord{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unsupported export format %q (use .pdf, .xlsx, .csv or .json)", filepath.Ext(path))
	}
}

func newLayoutsImportCmd(opts *options) *cobra.Command {
	var (
		name       string
		rows, cols int
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a CSV, XLSX or JSON layout into the library",
		Long: `Import a layout file into the library. Widgets keep their stored cell
when it is free and are moved to the first free region otherwise. Widgets
that fit nowhere on the grid are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			logger := loggerFromContext(cmd.Context())

			result := importer.ImportFile(path)
			for _, w := range result.Warnings {
				printWarning(out, "%s", w)
			}
			for _, e := range result.Errors {
				printError(out, "%s", e)
			}
			if err := result.Err(); err != nil {
				return err
			}

			settings := loadSettings(cmd.Context(), opts.configPath)
			if rows > 0 {
				settings.Rows = rows
			}
			if cols > 0 {
				settings.Cols = cols
			}
			settings.Normalize()
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			e := engine.New(engine.NewGrid(settings.Rows, settings.Cols, settings.CellSize), logger)
			placed, skipped := e.Arrange(result.Records, engine.ItemFromRecord)

			return withLibrary(opts, func(lib *project.Library) error {
				if err := lib.Save(name, settings.Rows, settings.Cols, e.Records()); err != nil {
					return err
				}
				printSuccess(out, "Imported %d widgets into %s", len(placed), name)
				for _, rec := range skipped {
					printDetail(out, "skipped %q: %dx%d does not fit a %dx%d grid", rec.Title, rec.SpanX, rec.SpanY, settings.Cols, settings.Rows)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "layout name (defaults to the file name)")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows (defaults to the settings file)")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns (defaults to the settings file)")
	return cmd
}

func newLayoutsDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(opts, func(lib *project.Library) error {
				if err := lib.Delete(args[0]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted %s", args[0])
				return nil
			})
		},
	}
}
