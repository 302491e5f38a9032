package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pebblely/internal/domain"
	"pebblely/internal/processing"
)

func newCreditsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "credits",
		Short: "Print the remaining credit balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := o.client()
			if err != nil {
				return err
			}
			credits, err := client.Credits(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(o.out, credits)
			return nil
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "list [subdirectory]",
		Short:     "List stored files, optionally for a single subdirectory",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: subdirectoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := o.store()
			if err != nil {
				return err
			}
			subs := domain.Subdirectories()
			if len(args) == 1 {
				sub, err := domain.ParseSubdirectory(args[0])
				if err != nil {
					return err
				}
				subs = []domain.Subdirectory{sub}
			}
			for _, sub := range subs {
				names, err := store.List(sub)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintf(o.out, "%s/%s\n", sub, name)
				}
			}
			return nil
		},
	}
}

func newUpscaleCmd(o *options) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "upscale FILE...",
		Short: "Upscale local images into the upscale subdirectory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("--size must be positive")
			}
			uploads, err := readLocalFiles(args)
			if err != nil {
				return err
			}
			proc, err := o.processor()
			if err != nil {
				return err
			}
			if err := proc.Upscale(cmd.Context(), uploads, size); err != nil {
				return err
			}
			report(o, domain.SubdirUpscale, uploads)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 2048, "target size of the longest edge")
	return cmd
}

func newRemoveBackgroundCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-background FILE...",
		Short: "Remove the background of local images into the removed subdirectory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, err := readLocalFiles(args)
			if err != nil {
				return err
			}
			proc, err := o.processor()
			if err != nil {
				return err
			}
			if err := proc.RemoveBackgrounds(cmd.Context(), uploads); err != nil {
				return err
			}
			report(o, domain.SubdirRemoved, uploads)
			return nil
		},
	}
}

func readLocalFiles(paths []string) ([]processing.Upload, error) {
	uploads := make([]processing.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		uploads = append(uploads, processing.Upload{Filename: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

func report(o *options, sub domain.Subdirectory, uploads []processing.Upload) {
	for _, u := range uploads {
		fmt.Fprintf(o.out, "%s/%s\n", sub, u.Filename)
	}
}

func subdirectoryNames() []string {
	subs := domain.Subdirectories()
	names := make([]string, len(subs))
	for i, s := range subs {
		names[i] = s.String()
	}
	return names
}
