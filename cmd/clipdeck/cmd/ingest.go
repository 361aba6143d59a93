package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/urlutil"
)

var (
	ingestMediaID     string
	ingestTitle       string
	ingestDescription string
)

// ingestCmd adds one file or URL to the library.
var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-url>",
	Short: "Ingest a media file or embed URL",
	Long: `Ingest a local file or a pasted URL into the media library.

The configured storage engines are tried in order until one claims the
input: file uploads land on a file backend, recognized provider URLs
(YouTube, Vimeo) become embeds. Without --media-id a new media item is
created.

Examples:

  clipdeck ingest talk.mp4 --title "Conference Talk"
  clipdeck ingest https://youtu.be/dQw4w9WgXcQ
  clipdeck ingest captions.srt --media-id 01J9WZ4N4B8Q6R9T0V1X3Y5Z7A`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMediaID, "media-id", "", "attach to an existing media item instead of creating one")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "title for a newly created media item")
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "description for a newly created media item")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	in, err := buildInput(args[0])
	if err != nil {
		return err
	}

	media, created, err := resolveMedia(cmd, a)
	if err != nil {
		return err
	}

	file, err := a.pipeline.AddNewMediaFile(ctx, media, in)
	if err != nil {
		if created {
			if derr := a.media.Delete(ctx, media.ID); derr != nil {
				a.logger.Warn("failed to remove media item after failed ingest",
					"media_id", media.ID, "error", derr)
			}
		}
		if msg, ok := engine.UserMessage(err); ok {
			return fmt.Errorf("%s", msg)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "media:   %s  %q\n", media.ID, media.Title)
	fmt.Fprintf(cmd.OutOrStdout(), "file:    %s  type=%s  unique_id=%s\n", file.ID, file.Type, file.UniqueID)
	if uris, uerr := a.pipeline.PlaybackURIs(ctx, file); uerr == nil {
		for _, uri := range uris {
			fmt.Fprintf(cmd.OutOrStdout(), "playback: %s\n", uri)
		}
	}
	return nil
}

// buildInput classifies the argument: remote URLs stay URLs, everything
// else must be a readable local file.
func buildInput(arg string) (engine.Input, error) {
	if urlutil.IsRemoteURL(arg) {
		return engine.Input{URL: arg}, nil
	}
	if _, err := os.Stat(arg); err != nil {
		return engine.Input{}, fmt.Errorf("%q is neither a URL nor a readable file: %w", arg, err)
	}
	upload, err := engine.UploadFromFile(arg)
	if err != nil {
		return engine.Input{}, err
	}
	return engine.Input{File: upload}, nil
}

// resolveMedia loads the target media item, or creates one when no
// --media-id was given. The second return reports whether it was created
// here, so a failed ingest can clean it up.
func resolveMedia(cmd *cobra.Command, a *app) (*models.Media, bool, error) {
	ctx := cmd.Context()
	if ingestMediaID != "" {
		id, err := models.ParseULID(ingestMediaID)
		if err != nil {
			return nil, false, fmt.Errorf("invalid --media-id: %w", err)
		}
		media, err := a.media.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if media == nil {
			return nil, false, fmt.Errorf("media item %s not found", id)
		}
		return media, false, nil
	}

	media := &models.Media{
		Title:       ingestTitle,
		Description: ingestDescription,
	}
	if err := a.media.Create(ctx, media); err != nil {
		return nil, false, fmt.Errorf("creating media item: %w", err)
	}
	return media, true, nil
}
