package main

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/thejezzi/conway/logging"
	"github.com/thejezzi/conway/tui"
	"github.com/thejezzi/conway/utils"
)

const defaultConfigPath = "conway.yaml"

// defaultSource is shown when no file is given and stdin is a terminal.
var defaultSource = []string{
	"",
	"  conway",
	"",
	"  :random        seed from noise",
	"  :from_current  seed from this text",
	"  :anonymize     seed from the visible region",
	"  :new_grid      edit a blank canvas",
	"",
	"  space pauses, q quits",
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := buildLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	source, name, err := readSource(args)
	if err != nil {
		return err
	}

	return tui.Run(cfg, source, name, logger)
}

// loadConfig resolves the effective configuration: defaults, then the YAML
// file, then explicitly set flags. An explicit --config must exist; the
// default path may be absent.
func loadConfig(cmd *cobra.Command) (utils.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := utils.LoadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return utils.Config{}, err
		}
		cfg = utils.DefaultConfig()
	}

	cfg = flagOverlay(cmd).ApplyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return utils.Config{}, err
	}
	return cfg, nil
}

// flagOverlay collects only the flags the user actually set, so an
// untouched flag never clobbers a file value.
func flagOverlay(cmd *cobra.Command) utils.Overlay {
	var o utils.Overlay
	flags := cmd.Flags()

	if flags.Changed("width") {
		v, _ := flags.GetInt("width")
		o.Width = &v
	}
	if flags.Changed("height") {
		v, _ := flags.GetInt("height")
		o.Height = &v
	}
	if flags.Changed("interval") {
		v, _ := flags.GetInt("interval")
		o.TickIntervalMs = &v
	}
	if flags.Changed("density") {
		v, _ := flags.GetFloat64("density")
		o.SeedDensity = &v
	}
	if flags.Changed("alive-glyph") {
		v, _ := flags.GetString("alive-glyph")
		o.AliveGlyph = &v
	}
	if flags.Changed("dead-glyph") {
		v, _ := flags.GetString("dead-glyph")
		o.DeadGlyph = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	return o
}

// buildLogger returns a file-backed logger when --log-file is set and a
// discarding one otherwise, since stderr belongs to the terminal UI.
func buildLogger(cmd *cobra.Command, cfg utils.Config) (*slog.Logger, func(), error) {
	path, _ := cmd.Flags().GetString("log-file")
	if path == "" {
		return logging.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "[buildLogger] failed to open log file: %+v", path)
	}
	return logging.NewLogger(cfg.LogLevel, f), func() { _ = f.Close() }, nil
}

// readSource loads the text the simulation feeds on: the file argument,
// piped stdin, or a built-in banner.
func readSource(args []string) ([]string, string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", errors.Wrapf(err, "[readSource] failed to read file: %+v", args[0])
		}
		return splitLines(string(data)), filepath.Base(args[0]), nil
	}

	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", errors.Wrap(err, "[readSource] failed to read stdin")
		}
		return splitLines(string(data)), "stdin", nil
	}

	return defaultSource, "welcome", nil
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
