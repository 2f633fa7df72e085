package main

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"tlog.app/go/errors"

	"ebbir/internal/config"
	"ebbir/internal/diag"
	"ebbir/internal/ir"
	"ebbir/internal/reader"
	"ebbir/internal/verifier"
)

var (
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	successColorFG = pterm.FgLightGreen
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG   = pterm.FgRed
)

func printErrorMessage(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

func printInfoMessage(tag, msg string) {
	successStyleBG.Print(tag)
	successColorFG.Println(" " + msg)
}

// outcome is the verification result of one function.
type outcome struct {
	parsed   *reader.Parsed
	findings []diag.Finding
	fatal    error
}

func (o *outcome) failed() bool { return o.fatal != nil || len(o.findings) > 0 }

// verifyAll verifies the functions of a file concurrently. Functions share
// no state, so each gets its own goroutine.
func verifyAll(parsed []*reader.Parsed, cfg *config.Config) []outcome {
	outcomes := make([]outcome, len(parsed))

	opts := verifier.Options{Parallel: cfg.Parallel}
	if cfg.Target != nil {
		opts.Target = cfg.Target
	}

	var wg sync.WaitGroup

	for i, p := range parsed {
		wg.Add(1)

		go func() {
			defer wg.Done()

			findings, fatal := verifier.Verify(p.Func, opts)
			outcomes[i] = outcome{parsed: p, findings: findings, fatal: fatal}
		}()
	}

	wg.Wait()

	return outcomes
}

// readFile reports a reader error with source context.
func readFile(w io.Writer, path, source string) ([]*reader.Parsed, bool) {
	parsed, err := reader.Parse(path, source)
	if err == nil {
		return parsed, true
	}

	var rerr *reader.Error
	if errors.As(err, &rerr) {
		r := diag.NewReporter(path, source, nil)
		fmt.Fprint(w, r.FormatError(rerr.Code, rerr.Message, rerr.Pos, rerr.Length))
	} else {
		fmt.Fprintln(w, err)
	}

	return nil, false
}

func verifyCommand(w io.Writer, path, source string, cfg *config.Config) int {
	startTime := time.Now()

	parsed, ok := readFile(w, path, source)
	if !ok {
		color.New(color.FgRed).Fprintf(w, "Reading %s failed\n", path)
		return 1
	}

	outcomes := verifyAll(parsed, cfg)

	failed := 0

	for i := range outcomes {
		o := &outcomes[i]
		r := diag.NewReporter(path, source, o.parsed.Source)

		fmt.Fprint(w, r.FormatAll(o.findings))

		if o.fatal != nil {
			fmt.Fprint(w, r.FormatFatal(o.parsed.Func.Name.String(), o.fatal))
		}

		if o.failed() {
			failed++
		}
	}

	table, err := summary(outcomes)
	if err != nil {
		printErrorMessage("Output Error", err)
	} else {
		fmt.Fprintln(w, table)
	}

	duration := formatDuration(time.Since(startTime))

	if failed > 0 {
		color.New(color.FgRed).Fprintf(w, "%d of %d functions failed verification after %s\n", failed, len(outcomes), duration)
		return 1
	}

	color.New(color.FgGreen).Fprintf(w, "Verified %d functions in %s\n", len(outcomes), duration)

	return 0
}

// summary renders one row per function.
func summary(outcomes []outcome) (string, error) {
	data := pterm.TableData{{"Function", "EBBs", "Insts", "Findings", "Status"}}

	for i := range outcomes {
		o := &outcomes[i]
		f := o.parsed.Func

		status := "ok"
		switch {
		case o.fatal != nil:
			status = "fatal"
		case len(o.findings) > 0:
			status = "failed"
		}

		data = append(data, []string{
			f.Name.String(),
			strconv.Itoa(len(f.Layout.Ebbs())),
			strconv.Itoa(f.DFG.NumInsts()),
			strconv.Itoa(len(o.findings)),
			status,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func printCommand(w io.Writer, path, source string) int {
	parsed, ok := readFile(w, path, source)
	if !ok {
		return 1
	}

	for i, p := range parsed {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprint(w, ir.PrintFunction(p.Func))
	}

	return 0
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
