package cli

import (
	"fmt"
	"strings"

	"github.com/fmueller/voxbridge/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetupCmd(app *appState) *cobra.Command {
	var bundled string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download or install and verify speech model assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}

			if strings.TrimSpace(bundled) != "" {
				path, err := models.InstallBundled(bundled, modelDir)
				if err != nil {
					return fmt.Errorf("install bundled model: %w", err)
				}
				app.log().Info("bundled model installed", zap.String("source", bundled), zap.String("path", path))
				fmt.Fprintf(cmd.OutOrStdout(), "Model installed at %s\n", path)
				return nil
			}

			resolved, err := models.Resolve(app.model, modelDir)
			if err != nil {
				return err
			}
			if resolved.Kind != models.KindNamed {
				return fmt.Errorf("setup expects a named model; got model file %s (use --from to install it)", resolved.Path)
			}

			name := resolved.Model.Name
			if !resolved.Missing {
				if err := models.VerifyChecksum(resolved.Path, resolved.Model.SHA256); err != nil {
					app.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("model", name), zap.Error(err))
					resolved.Missing = true
				}
			}

			if !resolved.Missing {
				app.log().Info("model already present", zap.String("model", name), zap.String("path", resolved.Path))
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s already present at %s\n", name, resolved.Path)
				return nil
			}

			app.log().Info("downloading model", zap.String("model", name), zap.String("path", resolved.Path))
			if err := models.FetchModel(cmd.Context(), resolved, models.DownloadOptions{
				NoProgress: app.noProgress,
				Logger:     app.log(),
			}); err != nil {
				return fmt.Errorf("download model %s: %w", name, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Model %s installed at %s\n", name, resolved.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&bundled, "from", "", "Install a model file shipped with the application instead of downloading")
	return cmd
}
