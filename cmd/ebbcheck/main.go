// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"
	"path/filepath"

	"github.com/ComedicChimera/olive"
	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"tlog.app/go/errors"

	"ebbir/internal/config"
)

const version = "0.1.0"

// logLevels maps the -ll selector onto commonlog verbosity.
var logLevels = map[string]int{
	"silent": -1,
	"error":  0,
	"warn":   1,
	"info":   3,
	"debug":  4,
}

func main() {
	os.Exit(execute(os.Args))
}

// execute runs the command line and returns the exit status.
func execute(args []string) int {
	cli := olive.NewCLI("ebbcheck", "ebbcheck reads and verifies textual EBB IR", true)
	cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "info", "debug"})
	cli.AddStringArg("config", "c", "path to an ebbcheck.toml file", false)

	verifyCmd := cli.AddSubcommand("verify", "verify every function of a file", true)
	verifyCmd.AddPrimaryArg("file", "the .clif file to verify", true)

	printCmd := cli.AddSubcommand("print", "print the canonical form of a file", true)
	printCmd.AddPrimaryArg("file", "the .clif file to print", true)

	cli.AddSubcommand("version", "print the ebbcheck version", false)

	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		printErrorMessage("Usage Error", err)
		return 2
	}

	subcmdName, subResult, ok := result.Subcommand()
	if !ok {
		printErrorMessage("Usage Error", errors.New("expected one of verify, print or version"))
		return 2
	}

	if subcmdName == "version" {
		printInfoMessage("ebbcheck", version)
		return 0
	}

	path, _ := subResult.PrimaryArg()

	cfg, err := loadConfig(result, filepath.Dir(path))
	if err != nil {
		printErrorMessage("Config Error", err)
		return 2
	}

	verbosity := cfg.Verbosity
	if level, ok := result.Arguments["loglevel"]; ok {
		verbosity = logLevels[level.(string)]
	}

	commonlog.Configure(verbosity, nil)
	color.NoColor = color.NoColor || !cfg.Color

	source, err := os.ReadFile(path)
	if err != nil {
		printErrorMessage("File Error", err)
		return 2
	}

	switch subcmdName {
	case "verify":
		return verifyCommand(os.Stdout, path, string(source), cfg)
	case "print":
		return printCommand(os.Stdout, path, string(source))
	}

	return 0
}

// loadConfig prefers -c, then an ebbcheck.toml next to the input or above it.
func loadConfig(result *olive.ArgParseResult, dir string) (*config.Config, error) {
	if path, ok := result.Arguments["config"]; ok {
		return config.Load(path.(string))
	}

	if path, ok := config.Find(dir); ok {
		return config.Load(path)
	}

	return config.Default(), nil
}
