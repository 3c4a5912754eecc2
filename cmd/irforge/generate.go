package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"irforge/internal/fixcache"
	"irforge/internal/forge"
	"irforge/internal/observ"
)

var generateCmd = &cobra.Command{
	Use:   "generate [suite...]",
	Short: "Write fixture suites as .ll files",
	Long: `Build every selected suite and write its files to <dir>/<suite dir>/<file>.ll.
Without arguments the suites come from irforge.toml, or all suites are generated.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("out", "o", defaultOutputDir, "output directory")
	generateCmd.Flags().StringP("dialect", "d", "3.8", "IR version to write (3.2|3.8)")
	generateCmd.Flags().IntP("jobs", "j", 0, "suites built in parallel (0 = GOMAXPROCS)")
	generateCmd.Flags().Bool("no-cache", false, "rewrite every file, ignoring the digest cache")
	generateCmd.Flags().Bool("clean-cache", false, "forget the digest cache before generating")
	generateCmd.Flags().Bool("verify", false, "read every written file back and compare digests")
	generateCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, args, cfg)
	if err != nil {
		return err
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return err
	}
	cleanCache, err := cmd.Flags().GetBool("clean-cache")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	showTimings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}

	tracing, cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var cache *fixcache.Cache
	if settings.Cache {
		cache, err = fixcache.Open(settings.Dir)
		if err != nil {
			return err
		}
		if cleanCache {
			if err := cache.Drop(); err != nil {
				return err
			}
		}
	}

	counters := &observ.Counters{}
	timer := observ.NewTimer()
	opts := forge.Options{
		Dir:      settings.Dir,
		Dialect:  settings.Dialect,
		Suites:   settings.Suites,
		Jobs:     settings.Jobs,
		Cache:    cache,
		Verify:   verify,
		Timer:    timer,
		Counters: counters,
	}

	out := cmd.OutOrStdout()
	var results []forge.SuiteResult
	if shouldUseTUI(mode, tracing.toStderr) {
		title := fmt.Sprintf("generating %d suites (IR %s) into %s", len(settings.Suites), settings.Dialect, settings.Dir)
		results, err = runGenerateWithUI(cmd.Context(), title, opts)
	} else {
		results, err = forge.Generate(cmd.Context(), opts)
		printResults(out, results)
	}

	if showTimings {
		fmt.Fprint(out, timer.Summary())
	}
	if err != nil {
		dumpRing(tracing.tracer)
		errorColor.Fprintf(out, "failed: ")
		fmt.Fprintln(out, counters)
		return err
	}
	okColor.Fprintf(out, "ok: ")
	fmt.Fprintln(out, counters)
	return nil
}

func printResults(out io.Writer, results []forge.SuiteResult) {
	for _, r := range results {
		written := 0
		for _, f := range r.Files {
			if f.Written {
				written++
			}
		}
		status := okColor.Sprint("done")
		if r.Failed() > 0 {
			status = errorColor.Sprint("fail")
		}
		fmt.Fprintf(out, "%s %-20s %s\n", status, r.Suite,
			dimColor.Sprintf("%d files, %d written", len(r.Files), written))
	}
}
