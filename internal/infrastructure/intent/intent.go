// Package intent extracts a structured trip request from free text with the
// Anthropic Messages API.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/example/trip-planner/internal/domain/trip"
)

const systemPrompt = `You extract structured travel requests.
Return only a JSON object with these fields:
  "origin": IATA airport code of the departure city,
  "destination": IATA airport code of the destination,
  "departure_date": YYYY-MM-DD,
  "return_date": YYYY-MM-DD or "" when not stated,
  "budget": total budget in USD as a number, 0 when not stated,
  "strategy": one of "cheapest_overall", "splurge_flight", "splurge_hotel"; "cheapest_overall" unless the traveller asks to spend more on flights or on the hotel,
  "adults": number of travellers, 1 when not stated,
  "prefer_red_eyes": true only when the traveller asks for overnight or red-eye flights.
Resolve relative dates against today's date. Do not add any text outside the JSON object.`

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type Extractor struct {
	client anthropic.Client
	model  anthropic.Model
}

func New(apiKey, model string, opts ...option.RequestOption) (*Extractor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Extractor{client: anthropic.NewClient(opts...), model: anthropic.Model(model)}, nil
}

func (e *Extractor) Extract(ctx context.Context, text string, today time.Time) (trip.Request, error) {
	prompt := fmt.Sprintf("Today's date is %s.\n\nTrip description:\n%s", today.Format(trip.DateLayout), strings.TrimSpace(text))
	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return trip.Request{}, fmt.Errorf("anthropic: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(tb.Text)
		}
	}
	return Parse(out.String())
}

type parsed struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"`
	ReturnDate    string  `json:"return_date"`
	Budget        float64 `json:"budget"`
	Strategy      string  `json:"strategy"`
	Adults        int     `json:"adults"`
	PreferRedEyes bool    `json:"prefer_red_eyes"`
}

// Parse reads the first JSON object in a model reply.
func Parse(reply string) (trip.Request, error) {
	raw := jsonObject.FindString(reply)
	if raw == "" {
		return trip.Request{}, fmt.Errorf("no JSON object in reply")
	}
	var p parsed
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return trip.Request{}, fmt.Errorf("decode reply: %w", err)
	}

	req := trip.Request{
		Origin:        strings.ToUpper(strings.TrimSpace(p.Origin)),
		Destination:   strings.TrimSpace(p.Destination),
		TotalBudget:   p.Budget,
		Strategy:      trip.Strategy(p.Strategy),
		Adults:        p.Adults,
		PreferRedEyes: p.PreferRedEyes,
	}
	var err error
	if req.DepartureDate, err = trip.ParseDate(p.DepartureDate); err != nil {
		return trip.Request{}, err
	}
	if strings.TrimSpace(p.ReturnDate) != "" {
		if req.ReturnDate, err = trip.ParseDate(p.ReturnDate); err != nil {
			return trip.Request{}, err
		}
	}
	return req, nil
}
