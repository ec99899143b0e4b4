package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

var (
	headerColor = color.New(color.Bold)
	dimColor    = color.New(color.FgHiBlack)
)

func busynessColor(b types.Busyness) *color.Color {
	switch b {
	case types.BusynessLow:
		return color.New(color.FgGreen)
	case types.BusynessModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func likelihoodColor(l int) *color.Color {
	switch {
	case l >= 75:
		return color.New(color.FgGreen)
	case l >= 50:
		return color.New(color.FgYellow)
	case l >= 25:
		return color.New(color.FgHiYellow)
	default:
		return color.New(color.FgRed)
	}
}

func renderLocations(w io.Writer, views []types.LocationView) {
	if len(views) == 0 {
		dimColor.Fprintln(w, "No cafes or libraries found nearby.")
		return
	}

	headerColor.Fprintf(w, "%-32s %-8s %-9s %6s %7s %-10s %s\n", "NAME", "TYPE", "BUSYNESS", "SEAT%", "WALK", "CLOSES", "RATING")
	for _, v := range views {
		walk := "-"
		if v.WalkingTime != nil {
			walk = fmt.Sprintf("%d min", *v.WalkingTime)
		}
		rating := "-"
		if v.Rating != nil {
			rating = fmt.Sprintf("%.1f", *v.Rating)
		}
		closes := v.ClosesAt
		if closes == "" {
			closes = "-"
		}
		fmt.Fprintf(w, "%-32s %-8s ", truncate(v.Name, 32), v.Kind)
		busynessColor(v.Busyness).Fprintf(w, "%-9s", v.Busyness)
		fmt.Fprint(w, " ")
		likelihoodColor(v.Likelihood).Fprintf(w, "%5d%%", v.Likelihood)
		fmt.Fprintf(w, " %7s %-10s %s\n", walk, closes, rating)
	}
	dimColor.Fprintf(w, "%d location(s)\n", len(views))
}

func renderForecast(w io.Writer, resp *types.ForecastResponse) {
	headerColor.Fprintf(w, "Seat availability forecast for %s\n", resp.Weekday)
	for _, slot := range resp.Slots {
		bar := strings.Repeat("█", slot.Likelihood/5)
		fmt.Fprintf(w, "%6s ", slot.TimeLabel)
		likelihoodColor(slot.Likelihood).Fprintf(w, "%-20s", bar)
		fmt.Fprintf(w, " %3d%%  %s\n", slot.Likelihood, slot.Category)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
