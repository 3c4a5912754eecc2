package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"irforge/internal/fixtures"
	"irforge/internal/irwriter"
)

const defaultOutputDir = "generated"

// runSettings is the merged view of flags, environment and config file.
// Flags win over the environment, which wins over the file.
type runSettings struct {
	Dir     string
	Dialect irwriter.Dialect
	Suites  []fixtures.Suite
	Jobs    int
	Cache   bool
}

func resolveSettings(cmd *cobra.Command, args []string, cfg *loadedConfig) (runSettings, error) {
	var file projectConfig
	root := "."
	if cfg != nil {
		file = cfg.Config
		root = cfg.Root
	}

	s := runSettings{Dir: defaultOutputDir, Cache: true, Jobs: file.Generate.Jobs}
	if file.Output.Dir != "" {
		s.Dir = file.Output.Dir
		if !filepath.IsAbs(s.Dir) {
			s.Dir = filepath.Join(root, s.Dir)
		}
	}
	if file.Generate.Cache != nil {
		s.Cache = *file.Generate.Cache
	}

	dialectName := file.Output.Dialect
	if env := os.Getenv(dialectEnv); env != "" {
		dialectName = env
	}
	flags := cmd.Flags()
	if flags.Changed("dialect") {
		v, err := flags.GetString("dialect")
		if err != nil {
			return s, err
		}
		dialectName = v
	}
	s.Dialect = irwriter.V38
	if dialectName != "" {
		d, err := irwriter.ParseDialect(dialectName)
		if err != nil {
			return s, err
		}
		s.Dialect = d
	}

	if flags.Lookup("out") != nil && flags.Changed("out") {
		v, err := flags.GetString("out")
		if err != nil {
			return s, err
		}
		s.Dir = v
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		v, err := flags.GetInt("jobs")
		if err != nil {
			return s, err
		}
		s.Jobs = v
	}
	if flags.Lookup("no-cache") != nil && flags.Changed("no-cache") {
		v, err := flags.GetBool("no-cache")
		if err != nil {
			return s, err
		}
		s.Cache = !v
	}

	names := args
	if len(names) == 0 {
		names = file.Generate.Suites
	}
	suites, err := fixtures.Select(names)
	if err != nil {
		return s, err
	}
	s.Suites = suites
	return s, nil
}
