package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

func renderCandidates(cands []candidate.Candidate, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if !colorize {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"#", "Platform", "Score", "Source", "URL"})
	for i, c := range cands {
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			c.Platform,
			strconv.FormatFloat(c.Confidence, 'f', 2, 64),
			string(c.Origin),
			c.URL,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	if colorize {
		tw.Style().Color.Header = text.Colors{text.Bold}
	}
	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
