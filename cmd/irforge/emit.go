package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irforge/internal/forge"
)

var emitCmd = &cobra.Command{
	Use:   "emit <suite> [file]",
	Short: "Print the modules of one suite",
	Long:  `Print every module of a suite to stdout, or a single file of it. With --out the single file is written to a path instead.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().StringP("dialect", "d", "3.8", "IR version to write (3.2|3.8)")
	emitCmd.Flags().StringP("out", "o", "", "write the selected file to this path (requires [file])")
}

func runEmit(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, args[:1], cfg)
	if err != nil {
		return err
	}
	suite := settings.Suites[0]
	file := ""
	if len(args) == 2 {
		file = args[1]
	}

	_, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if out != "" {
		if file == "" {
			return fmt.Errorf("--out needs a file name; see `irforge list %s`", suite.Name)
		}
		return forge.EmitFile(suite, file, out, settings.Dialect)
	}
	return forge.Emit(cmd.Context(), cmd.OutOrStdout(), suite, settings.Dialect, file)
}
