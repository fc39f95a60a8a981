// Package present renders planning results for terminals and scripts.
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/example/trip-planner/internal/application/planner"
	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/domain/trip"
)

type Printer struct {
	Out     io.Writer
	Color   bool
	Verbose bool
}

func (p Printer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Text writes the human readable trip plan.
func (p Printer) Text(res usecases.Result) error {
	var b strings.Builder
	head := p.paint(color.Bold)
	section := p.paint(color.FgCyan, color.Bold)
	good := p.paint(color.FgGreen)
	bad := p.paint(color.FgRed, color.Bold)

	req := res.Request
	head.Fprintf(&b, "Trip: %s\n", orNA(req.Destination))
	fmt.Fprintf(&b, "From: %s\n", orNA(req.Origin))
	fmt.Fprintf(&b, "Depart: %s - Return: %s\n", date(req.DepartureDate.Format(trip.DateLayout), req.DepartureDate.IsZero()), date(req.ReturnDate.Format(trip.DateLayout), req.ReturnDate.IsZero()))
	fmt.Fprintf(&b, "Budget: %s\n", Money(req.TotalBudget))
	fmt.Fprintf(&b, "Strategy: %s\n", req.Strategy)
	if req.PreferRedEyes {
		fmt.Fprintln(&b, "Red-eye flights: preferred")
	}
	b.WriteString("\n")

	switch o := res.Outcome.(type) {
	case trip.Complete:
		section.Fprintln(&b, "--- Flights ---")
		for _, f := range o.Selection.Flights {
			writeFlight(&b, f)
		}
		section.Fprintln(&b, "--- Hotel ---")
		if o.Selection.Hotel != nil {
			writeHotel(&b, *o.Selection.Hotel)
		}
		section.Fprintln(&b, "--- Total ---")
		good.Fprintf(&b, "Total: %s (remaining %s)\n", Money(o.TotalCost), Money(o.RemainingBudget))
		fmt.Fprintf(&b, "Split: flights %s / hotels %s\n", percent(o.Split.Flights), percent(o.Split.Hotels))
	case trip.Infeasible:
		bad.Fprintf(&b, "No plan found: %s\n", o.Reason)
		if o.Cause != nil && o.Cause.Error() != o.Reason {
			fmt.Fprintf(&b, "Cause: %v\n", o.Cause)
		}
	default:
		bad.Fprintf(&b, "Planning stopped with status %s\n", res.Outcome.Kind())
	}

	if p.Verbose {
		fmt.Fprintf(&b, "\n")
		section.Fprintln(&b, "--- History ---")
		for _, s := range res.History {
			fmt.Fprintf(&b, "turn %d round %d %s", s.Turn, s.Round, s.State)
			if s.Component != "" {
				fmt.Fprintf(&b, " %s", s.Component)
			}
			if s.Ceiling != nil {
				fmt.Fprintf(&b, " ceiling=%s", Money(*s.Ceiling))
			}
			if s.State == planner.StateSearchFlights || s.State == planner.StateSearchHotels {
				fmt.Fprintf(&b, " results=%d", s.Results)
			}
			if s.Outcome != "" {
				fmt.Fprintf(&b, " -> %s", s.Outcome)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "turns=%d rounds=%d id=%s\n", res.Turns, res.Rounds, res.ID)
	}

	_, err := io.WriteString(p.Out, b.String())
	return err
}

func writeFlight(b *strings.Builder, c trip.Candidate) {
	d := c.Details
	fmt.Fprintf(b, "- %s • %s → %s\n", orDefault(d["carrier"], "Unknown Carrier"), d["from"], d["to"])
	if v := d["flight_number"]; v != "" {
		fmt.Fprintf(b, "  Flight: %s\n", v)
	}
	if v := d["departure"]; v != "" {
		fmt.Fprintf(b, "  Depart: %s\n", v)
	}
	if v := d["arrival"]; v != "" {
		fmt.Fprintf(b, "  Arrive: %s\n", v)
	}
	if v := d["duration"]; v != "" {
		fmt.Fprintf(b, "  Duration: %s\n", v)
	}
	fmt.Fprintf(b, "  Price: %s\n\n", Money(c.Cost))
}

func writeHotel(b *strings.Builder, c trip.Candidate) {
	d := c.Details
	fmt.Fprintf(b, "- %s | Rating: %s\n", orDefault(d["name"], "Unknown"), orNA(d["rating"]))
	fmt.Fprintf(b, "  Total: %s %s\n\n", Money(c.Cost), orDefault(d["currency"], "USD"))
}

// JSON writes the result as indented JSON.
func JSON(w io.Writer, res usecases.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// Money formats v as dollars with thousands separators, e.g. $1,234.50.
func Money(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	fmt.Fprintf(&b, ".%02d", cents%100)
	return b.String()
}

func percent(r float64) string {
	return strconv.Itoa(int(math.Round(r*100))) + "%"
}

func date(s string, zero bool) string {
	if zero {
		return "N/A"
	}
	return s
}

func orNA(s string) string { return orDefault(s, "N/A") }

func orDefault(s, d string) string {
	if strings.TrimSpace(s) == "" {
		return d
	}
	return s
}
