package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/furry-store/backend"
	"github.com/odvcencio/furry-store/bus"
	"github.com/odvcencio/furry-store/metrics"
	"github.com/odvcencio/furry-store/persist"
	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/state"
	"github.com/odvcencio/furry-store/syncstore"
	"github.com/odvcencio/furry-store/widgets"
)

func NewWatchCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [key...]",
		Short: "Print keys every time they change, here or in another context",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return e.watch(ctx, cmd.OutOrStdout(), args)
		},
	}
	flags := cmd.Flags()
	addMetricsAddrFlag(flags, e.v)
	addWidthFlag(flags, e.v)
	addNoticesFlag(flags, e.v)
	addTUIFlag(flags, e.v)
	return cmd
}

func (e *env) watch(ctx context.Context, out io.Writer, keys []string) (err error) {
	column := widgets.NewColumn()
	logNotices := noticesFlag(e.v)
	render := func(buf *runtime.Buffer) {
		_, _ = fmt.Fprintln(out, strings.TrimRight(buf.String(), "\n"))
	}
	var screen tcell.Screen
	if tuiFlag(e.v) {
		if screen, err = tcell.NewScreen(); err != nil {
			return errors.Wrap(err, "open terminal")
		}
		if err = screen.Init(); err != nil {
			return errors.Wrap(err, "init terminal")
		}
		defer screen.Fini()
		render = backend.NewScreen(screen).Render
	}
	loop := runtime.LoopConfig{
		Root:     column,
		Width:    widthFlag(e.v),
		Renderer: render,
	}

	p, closeFn, err := e.openPage(ctx, loop)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, closeFn())
	}()
	area, err := e.area(p)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		if keys, err = area.Keys(ctx); err != nil {
			return err
		}
	}
	if len(keys) == 0 {
		return errors.New("nothing to watch: pass keys or store some first")
	}
	for _, key := range keys {
		column.Add(widgets.NewStoreLabel(key+": ", encoded(persist.New[any](area, key, syncstore.Value[any](nil)))))
	}
	if screen != nil {
		go backend.Forward(screen, p.Loop())
	} else {
		p.Loop().Post(runtime.ResizeMsg{Width: widthFlag(e.v), Height: len(keys)})
	}
	if logNotices {
		stopObserve := p.Bus().Observe(func(n bus.Notice) {
			e.logger.Info("notice",
				zap.Any("area", n.Scope),
				zap.String("key", n.Key),
				zap.Bool("remote", n.Remote),
			)
		})
		defer stopObserve()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		if err := p.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if addr := e.cfg.Metrics.Addr; addr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, addr, e.cfg.Metrics.Path, e.logger.Named("metrics"))
		})
	}
	return g.Wait()
}

// encoded renders a store value as compact JSON for display.
func encoded(s state.Store[any]) state.Store[string] {
	return state.Map(s, func(v any) string {
		text, err := json.MarshalToString(v)
		if err != nil {
			return "<" + err.Error() + ">"
		}
		return text
	})
}
