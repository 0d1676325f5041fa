package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/quizdrill/internal/cli"
	"github.com/at-ishikawa/quizdrill/internal/statistics"
)

type FormatFlag string

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	switch v {
	case string(FormatText), string(FormatJSON), string(FormatYAML):
		*f = FormatFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q or %q", v, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

const (
	FormatText FormatFlag = "text"
	FormatJSON FormatFlag = "json"
	FormatYAML FormatFlag = "yaml"
)

type statsReport struct {
	Total      int            `json:"total" yaml:"total"`
	Attempted  int            `json:"attempted" yaml:"attempted"`
	Correct    int            `json:"correct" yaml:"correct"`
	Wrong      int            `json:"wrong" yaml:"wrong"`
	Accuracy   float64        `json:"accuracy" yaml:"accuracy"`
	Completion float64        `json:"completion" yaml:"completion"`
	Periods    []periodReport `json:"periods" yaml:"periods"`
}

type periodReport struct {
	Period  string `json:"period" yaml:"period"`
	Correct int    `json:"correct" yaml:"correct"`
	Wrong   int    `json:"wrong" yaml:"wrong"`
}

func writeStats(w io.Writer, format FormatFlag, progress statistics.Progress, periods []statistics.PeriodStatistics) error {
	if format == FormatText || format == "" {
		cli.PrintProgress(w, progress)
		fmt.Fprintf(w, "Correct: %d, wrong: %d, completion: %.0f%%\n",
			progress.Correct, progress.Wrong, progress.Completion()*100)
		for _, p := range periods {
			fmt.Fprintf(w, "%s: %d correct, %d wrong\n", p.Period, p.Correct, p.Wrong)
		}
		return nil
	}

	report := statsReport{
		Total:      progress.Total,
		Attempted:  progress.Attempted,
		Correct:    progress.Correct,
		Wrong:      progress.Wrong,
		Accuracy:   progress.Accuracy(),
		Completion: progress.Completion(),
		Periods:    make([]periodReport, 0, len(periods)),
	}
	for _, p := range periods {
		report.Periods = append(report.Periods, periodReport{Period: p.Period, Correct: p.Correct, Wrong: p.Wrong})
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("json.Encode() > %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		if err := encoder.Encode(report); err != nil {
			return fmt.Errorf("yaml.Encode() > %w", err)
		}
	}
	return nil
}
