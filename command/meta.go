// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package command

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/devdax-harness/devdax"
	"github.com/hashicorp/devdax-harness/devdax/ndctl"
	"github.com/hashicorp/devdax-harness/helper/logging"
	"github.com/hashicorp/devdax-harness/testconfig"
	"github.com/hashicorp/go-hclog"
	colorable "github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/colorstring"
	"github.com/posener/complete"
)

// FlagSetFlags is an enum to define what flags are present in the
// default FlagSet returned by Meta.FlagSet.
type FlagSetFlags uint

const (
	FlagSetNone    FlagSetFlags = 0
	FlagSetConfig  FlagSetFlags = 1 << iota
	FlagSetDefault              = FlagSetConfig
)

// Meta contains the meta-options and functionality that nearly every
// devdax command inherits.
type Meta struct {
	Ui cli.Ui

	// These are set by the command line flags.
	configPath string
	logLevel   string

	// Whether to not-colorize output
	noColor bool

	// Whether to force colorized output
	forceColor bool

	// Whether to route command output through the logger
	logUI bool

	// inspector and verifier replace the ndctl and pmemdetect backed
	// implementations when set.
	inspector devdax.Inspector
	verifier  devdax.Verifier
}

// FlagSet returns a FlagSet with the common flags that every
// command implements. The exact behavior of FlagSet can be configured
// using the flags as the second parameter.
func (m *Meta) FlagSet(n string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(n, flag.ContinueOnError)

	// FlagSetConfig is used to enable the settings that locate and load
	// the test configuration.
	if fs&FlagSetConfig != 0 {
		f.StringVar(&m.configPath, "config", "", "")
		f.StringVar(&m.logLevel, "log-level", "", "")
		f.BoolVar(&m.noColor, "no-color", false, "")
		f.BoolVar(&m.forceColor, "force-color", false, "")
		f.BoolVar(&m.logUI, "log-ui", false, "")
	}

	f.SetOutput(&uiErrorWriter{ui: m.Ui})

	return f
}

// AutocompleteFlags returns a set of flag completions for the given flag set.
func (m *Meta) AutocompleteFlags(fs FlagSetFlags) complete.Flags {
	if fs&FlagSetConfig == 0 {
		return nil
	}

	return complete.Flags{
		"-config":      complete.PredictFiles("*.hcl"),
		"-log-level":   complete.PredictSet("trace", "debug", "info", "warn", "error"),
		"-no-color":    complete.PredictNothing,
		"-force-color": complete.PredictNothing,
		"-log-ui":      complete.PredictNothing,
	}
}

// logger returns the logger selected by -log-level. Without a level
// logging is discarded, unless -log-ui needs it for output.
func (m *Meta) logger() (hclog.Logger, error) {
	name := m.logLevel
	if name == "" {
		if !m.logUI {
			return hclog.NewNullLogger(), nil
		}
		name = "info"
	}
	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", m.logLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "devdax",
		Level:  level,
		Output: os.Stderr,
		Color:  m.logColor(),
	}), nil
}

func (m *Meta) logColor() hclog.ColorOption {
	if m.noColor {
		return hclog.ColorOff
	}
	if m.forceColor {
		return hclog.ForceColor
	}
	return hclog.AutoColor
}

// setupLogUI routes all command output through the logger when -log-ui is
// set. It must run after the flags are parsed.
func (m *Meta) setupLogUI(logger hclog.Logger) {
	if m.logUI {
		m.Ui = &logging.HcLogUI{Log: logger}
	}
}

// loadConfig loads the test configuration named by -config or the
// environment.
func (m *Meta) loadConfig() (*testconfig.Config, error) {
	return testconfig.Load(m.configPath)
}

// newInspector returns the device inspector for the configuration, wrapped
// in a cache so each property is only looked up once per run.
func (m *Meta) newInspector(logger hclog.Logger, c *testconfig.Config) (devdax.Inspector, error) {
	inspector := m.inspector
	if inspector == nil {
		inspector = ndctl.New(logger, ndctl.Options{Binary: c.Ndctl, Timeout: c.InspectTimeout})
	}
	return devdax.NewCachingInspector(logger, inspector, c.CacheSize)
}

func (m *Meta) newVerifier(logger hclog.Logger, c *testconfig.Config) devdax.Verifier {
	if m.verifier != nil {
		return m.verifier
	}
	return ndctl.NewPmemdetect(logger, ndctl.Options{Binary: c.Pmemdetect, Timeout: c.InspectTimeout})
}

func (m *Meta) Colorize() *colorstring.Colorize {
	_, coloredUi := m.Ui.(*cli.ColoredUi)

	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !coloredUi,
		Reset:   true,
	}
}

func (m *Meta) SetupUi(args []string) {
	noColor := os.Getenv(EnvDevDaxCLINoColor) != ""
	forceColor := os.Getenv(EnvDevDaxCLIForceColor) != ""

	for _, arg := range args {
		// Check if color is set
		if arg == "-no-color" || arg == "--no-color" {
			noColor = true
		} else if arg == "-force-color" || arg == "--force-color" {
			forceColor = true
		}
	}

	m.Ui = &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      colorable.NewColorableStdout(),
		ErrorWriter: colorable.NewColorableStderr(),
	}

	// Only use colored UI if not disabled and stdout is a tty or colors are
	// forced.
	isTerminal := isatty.IsTerminal(os.Stdout.Fd())
	useColor := !noColor && (isTerminal || forceColor)
	if useColor {
		m.Ui = &cli.ColoredUi{
			ErrorColor: cli.UiColorRed,
			WarnColor:  cli.UiColorYellow,
			InfoColor:  cli.UiColorGreen,
			Ui:         m.Ui,
		}
	}
}

// generalOptionsUsage returns the help string for the global options.
func generalOptionsUsage() string {
	helpText := `
  -config=<path>
    Path to the HCL test configuration listing the device-dax devices.
    Overrides the DEVDAX_TESTCONFIG environment variable if set. The
    DEVDAX_PATH environment variable, a comma separated list of devices,
    replaces the configured device pool.

  -log-level=<level>
    Log the device inspection at the given level to stderr. One of trace,
    debug, info, warn or error. Logging is disabled by default.

  -log-ui
    Write command output through the logger instead of plain stdout.

  -no-color
    Disables colored command output. Alternatively, DEVDAX_CLI_NO_COLOR may
    be set. This option takes precedence over -force-color.

  -force-color
    Forces colored command output. This can be used in cases where the usual
    terminal detection fails. Alternatively, DEVDAX_CLI_FORCE_COLOR may be
    set. This option has no effect if -no-color is also used.
`
	return strings.TrimSpace(helpText)
}
