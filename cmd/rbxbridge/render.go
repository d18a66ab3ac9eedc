package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	target  lipgloss.Style
	place   lipgloss.Style
	active  lipgloss.Style
	context lipgloss.Style
	empty   lipgloss.Style
	section lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		target:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		place:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		active:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		context: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		empty:   lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
	}
}

var st = newStyles()

func placeLabel(id *int64, name string) string {
	if id == nil {
		return "none"
	}
	if name == "" {
		return fmt.Sprintf("%d", *id)
	}
	return fmt.Sprintf("%s (%d)", name, *id)
}

func renderTarget(s wire.State) string {
	return fmt.Sprintf("%s %s %s %s",
		st.header.Render("target:"),
		st.target.Render(placeLabel(s.TargetPlaceID, s.TargetPlaceName)),
		st.header.Render("context:"),
		st.context.Render(s.TargetContext),
	)
}

func renderPlaces(s wire.State) string {
	lines := []string{
		st.title.Render("Places"),
		st.header.Render(fmt.Sprintf("registered: %d", len(s.Places))),
	}
	if len(s.Places) == 0 {
		lines = append(lines, st.empty.Render("No places have reported in."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	rows := make([]string, 0, len(s.Places))
	for _, p := range s.Places {
		marker, style := "  ", st.place
		if s.TargetPlaceID != nil && *s.TargetPlaceID == p.PlaceID {
			marker, style = "* ", st.target
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			style.Render(marker+placeLabel(&p.PlaceID, p.Name)),
			"  ",
			st.header.Render("remembered "+p.TargetContext),
			"  ",
			renderContexts(p.ActiveContexts),
		))
	}
	lines = append(lines, st.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderContexts(active []string) string {
	if len(active) == 0 {
		return st.empty.Render("inactive")
	}
	return st.active.Render(strings.Join(active, ","))
}

func renderStatus(s wire.State) string {
	lines := []string{
		st.title.Render("rbxbridge"),
		renderTarget(s),
		st.header.Render("active: ") + renderContexts(s.ActiveContexts),
	}
	if s.ShowContextSwitch {
		lines = append(lines, st.header.Render("server and client are both running, use `target context next` to switch"))
	}

	queued := make([]string, 0, len(bridge.Contexts))
	for _, c := range bridge.Contexts {
		if n := s.Queued[c.String()]; n > 0 {
			queued = append(queued, fmt.Sprintf("%s=%d", c, n))
		}
	}
	if len(queued) == 0 {
		lines = append(lines, st.empty.Render("no queued jobs"))
	} else {
		lines = append(lines, st.header.Render("queued: ")+strings.Join(queued, " "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderJob(j wire.QueuedJob) string {
	return fmt.Sprintf("%s %s %s %s %s",
		st.header.Render("queued"),
		st.place.Render(fmt.Sprintf("%s (%d bytes)", j.File, j.Bytes)),
		st.header.Render("for"),
		st.target.Render(placeLabel(j.TargetPlaceID, "")),
		st.context.Render(j.Context),
	)
}

func renderEvent(ev wire.Event) string {
	switch ev.Type {
	case wire.EventQueueCleared:
		return st.header.Render(ev.Type+": ") + st.context.Render(ev.Context)
	case wire.EventConnected:
		return st.header.Render(ev.Type)
	default:
		if ev.State == nil {
			return st.header.Render(ev.Type)
		}
		return st.header.Render(ev.Type+": ") + renderTarget(*ev.State)
	}
}
