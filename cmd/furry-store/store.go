package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/odvcencio/furry-store/page"
	"github.com/odvcencio/furry-store/persist"
	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/syncstore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// withArea opens a page, hands the selected area to fn and closes the page.
func (e *env) withArea(cmd *cobra.Command, fn func(p *page.Page, area *persist.Area) error) (err error) {
	p, closeFn, err := e.openPage(cmd.Context(), runtime.LoopConfig{})
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
	return fn(p, area)
}

func NewGetCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a key as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var fallback any
			if err := json.UnmarshalFromString(defaultValueFlag(e.v), &fallback); err != nil {
				return errors.Wrap(err, "parse --default")
			}
			return e.withArea(cmd, func(_ *page.Page, area *persist.Area) error {
				value := persist.New[any](area, args[0], syncstore.Value(fallback)).Snapshot()
				out, err := json.MarshalToString(value)
				if err != nil {
					return errors.Wrap(err, "encode value")
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	addDefaultValueFlag(cmd.Flags(), e.v)
	return cmd
}

func NewSetCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Write a JSON value and notify other contexts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any = args[1]
			if !stringFlag(e.v) {
				if err := json.UnmarshalFromString(args[1], &value); err != nil {
					return errors.Wrap(err, "value is not JSON (use --string for plain text)")
				}
			}
			return e.withArea(cmd, func(_ *page.Page, area *persist.Area) error {
				if err := persist.New[any](area, args[0], syncstore.Value[any](nil)).Set(value); err != nil {
					return err
				}
				e.logger.Debug("value written", zap.String("area", area.Name()), zap.String("key", args[0]))
				return nil
			})
		},
	}
	addStringFlag(cmd.Flags(), e.v)
	return cmd
}

func NewRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Delete a key and notify other contexts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withArea(cmd, func(_ *page.Page, area *persist.Area) error {
				return persist.New[any](area, args[0], syncstore.Value[any](nil)).Remove()
			})
		},
	}
}

func NewKeysCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withArea(cmd, func(_ *page.Page, area *persist.Area) error {
				keys, err := area.Keys(cmd.Context())
				if err != nil {
					return err
				}
				for _, key := range keys {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
