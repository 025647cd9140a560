package main

import (
	"fmt"
	"io"
	"os"

	"github.com/color-game/contest/models"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

func printSuccess(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! "+format+"\n", a...)
}

func printError(w io.Writer, err error) {
	red.Fprintf(w, "Error: %v\n", err)
}

func printDescription(w io.Writer, sample models.ColorSample, desc models.ColorDescription) {
	bold.Fprintf(w, "%s\n", desc.Hex)
	fmt.Fprintf(w, "  oklch:   %.3f %.3f %.1f (alpha %.2f)\n", sample.L, sample.C, sample.H, sample.Alpha)
	fmt.Fprintf(w, "  family:  %s\n", desc.Family)
	fmt.Fprintf(w, "  looks:   %s\n", desc.QualitativeText)
	cyan.Fprintf(w, "  nearest: %s\n", desc.NearestLibraryName)
}

func printRanking(w io.Writer, ranking models.RankingResponse) {
	if ranking.ReferenceColor == nil {
		printWarning(w, "no reference color set, entries are unranked")
	}
	for _, row := range ranking.Entries {
		line := fmt.Sprintf("%3d. %-24s", row.Rank, row.Entry.Name)
		if row.HasDistance() {
			line += fmt.Sprintf(" distance %.4f score %3d", *row.Distance, row.Score)
		} else {
			line += " distance    -"
		}
		line += "  " + row.Description
		if row.Winner {
			green.Fprintf(w, "%s  WINNER\n", line)
		} else {
			fmt.Fprintln(w, line)
		}
	}
}
