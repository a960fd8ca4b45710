package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-tracer/internal/config"
	"github.com/df07/go-sphere-tracer/pkg/scene"
)

func newScenesCmd() *cobra.Command {
	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			return listScenes(cmd.OutOrStdout(), cfg)
		},
	}
	scenesCmd.Flags().String("scenes-dir", "scenes", "directory searched for scene files")
	return scenesCmd
}

func listScenes(out io.Writer, cfg *config.Config) error {
	response, err := scene.ListAllScenes(cfg.Scene.Dir)
	if err != nil {
		return fmt.Errorf("failed to list scenes: %w", err)
	}

	for i, group := range response.Groups {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(out, "  %-20s %s\n", info.ID, info.Description)
			} else {
				fmt.Fprintf(out, "  %s\n", info.ID)
			}
		}
	}
	return nil
}
