package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/genricoloni/multiview/internal/config"
	"github.com/genricoloni/multiview/internal/controller"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/engine"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const stopTimeout = 10 * time.Second

// playOptions are the play command flags
type playOptions struct {
	syncUID     string
	contentType string
	live        bool
	quality     string
	restore     bool
	saveOnExit  bool
}

func newPlayCmd() *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play URL...",
		Short: "Open one window per stream",
		Long: "Open one window per stream. Streams sharing a sync id stay time-aligned;\n" +
			"media keys pause or close every window at once.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := flagsFrom(cmd)
			if cmd.Flags().Changed("quality") {
				flags.Overrides[config.KeyDefaultQuality] = opts.quality
			}
			return runPlay(cmd.Context(), flags, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.syncUID, "sync-uid", "", "Keep every stream of this group time-aligned")
	cmd.Flags().StringVar(&opts.contentType, "content-type", string(domain.ContentTypeLive), "Content type (LIVE, CHANNEL, EPISODE)")
	cmd.Flags().BoolVar(&opts.live, "live", false, "Streams are live and cannot be seeked")
	cmd.Flags().StringVar(&opts.quality, "quality", "", "Quality tier (high, medium, low, lowest)")
	cmd.Flags().BoolVar(&opts.restore, "restore", false, "Reopen windows with the layout saved for this content type")
	cmd.Flags().BoolVar(&opts.saveOnExit, "save-layout", false, "Save the window layout of this content type on exit")
	return cmd
}

// contentRefs builds one content reference per stream argument
func contentRefs(opts playOptions, args []string) ([]domain.ContentRef, error) {
	contentType := domain.ContentType(strings.ToUpper(opts.contentType))
	switch contentType {
	case domain.ContentTypeLive, domain.ContentTypeChannel, domain.ContentTypeEpisode:
	default:
		return nil, fmt.Errorf("unknown content type %q", opts.contentType)
	}

	return lo.Map(args, func(arg string, _ int) domain.ContentRef {
		return domain.ContentRef{
			ID:      arg,
			SyncUID: opts.syncUID,
			Title:   displayTitle(arg),
			Name:    arg,
			Type:    contentType,
			IsLive:  opts.live,
		}
	}), nil
}

// displayTitle is the last path element of a URL or file path
func displayTitle(arg string) string {
	p := arg
	if u, err := url.Parse(arg); err == nil && u.Host != "" {
		p = u.Path
	}
	if title := path.Base(strings.TrimRight(p, "/")); title != "." && title != "/" && title != "" {
		return title
	}
	return arg
}

func runPlay(parent context.Context, flags Flags, opts playOptions, args []string) error {
	contents, err := contentRefs(opts, args)
	if err != nil {
		return err
	}

	var (
		eng    *engine.Engine
		logger *zap.Logger
	)
	app := fx.New(
		AppOptions,
		fx.Replace(flags),
		fx.Populate(&eng, &logger),
	)
	if err := app.Err(); err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}

	openErr := openAll(ctx, eng, logger, opts, contents)
	if len(eng.Sessions()) > 0 {
		// Returns when every window closed or on interrupt
		_ = eng.Wait(ctx)
	}

	if opts.saveOnExit && len(eng.Sessions()) > 0 {
		if _, err := eng.SaveLayout(context.Background(), contents[0].Type); err != nil {
			logger.Error("Failed to save layout", zap.Error(err))
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	return multierr.Append(openErr, app.Stop(stopCtx))
}

// openAll opens the streams, restoring saved windows first when asked
func openAll(ctx context.Context, eng *engine.Engine, logger *zap.Logger, opts playOptions, contents []domain.ContentRef) error {
	pending := contents
	var errs error

	if opts.restore {
		restored, err := eng.RestoreLayout(ctx, contents[0].Type, contents)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		names := lo.Map(restored, func(c *controller.Controller, _ int) string {
			return c.Content().Name
		})
		pending = lo.Filter(contents, func(c domain.ContentRef, _ int) bool {
			return !lo.Contains(names, c.Name)
		})
	}

	for _, content := range pending {
		if _, err := eng.OpenSession(ctx, content, mo.None[domain.WindowSettings]()); err != nil {
			logger.Error("Failed to open stream", zap.String("stream", content.ID), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
