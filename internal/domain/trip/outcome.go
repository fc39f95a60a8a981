package trip

import "encoding/json"

type OutcomeKind string

const (
	KindComplete           OutcomeKind = "complete"
	KindNeedMoreOptions    OutcomeKind = "need_more_options"
	KindNeedCheaperOptions OutcomeKind = "need_cheaper_options"
	KindInfeasible         OutcomeKind = "infeasible"
)

// Outcome is the result of one Allocator round. The concrete type is one of
// Complete, NeedMoreOptions, NeedCheaperOptions or Infeasible.
type Outcome interface {
	Kind() OutcomeKind
	sealed()
}

type Complete struct {
	Selection       Selection
	TotalCost       float64
	RemainingBudget float64
	Split           BudgetSplit
}

// NeedMoreOptions asks for a new search of Component with a larger share.
type NeedMoreOptions struct {
	Component Component
	NewBudget float64
	Split     BudgetSplit
}

// Pin is a selection carried unchanged into the next round.
type Pin struct {
	Component Component
	Flights   []Candidate
	Hotel     *Candidate
}

// NeedCheaperOptions asks for a new search of Component under a lower ceiling
// while the other component keeps the pinned selection.
type NeedCheaperOptions struct {
	Component Component
	NewBudget float64
	Split     BudgetSplit
	Pinned    Pin
}

type Infeasible struct {
	Reason string
	// Cause is ErrBudgetInfeasible, ErrTurnLimitExceeded or a provider error.
	Cause error
}

func (Complete) Kind() OutcomeKind           { return KindComplete }
func (NeedMoreOptions) Kind() OutcomeKind    { return KindNeedMoreOptions }
func (NeedCheaperOptions) Kind() OutcomeKind { return KindNeedCheaperOptions }
func (Infeasible) Kind() OutcomeKind         { return KindInfeasible }

func (Complete) sealed()           {}
func (NeedMoreOptions) sealed()    {}
func (NeedCheaperOptions) sealed() {}
func (Infeasible) sealed()         {}

func (o Complete) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status          OutcomeKind `json:"status"`
		Selection       Selection   `json:"selection"`
		TotalCost       float64     `json:"total_cost"`
		RemainingBudget float64     `json:"remaining_budget"`
		Split           BudgetSplit `json:"allocation_used"`
	}{o.Kind(), o.Selection, o.TotalCost, o.RemainingBudget, o.Split})
}

func (o NeedMoreOptions) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status    OutcomeKind `json:"status"`
		Component Component   `json:"component"`
		NewBudget float64     `json:"new_budget"`
		Split     BudgetSplit `json:"allocation"`
	}{o.Kind(), o.Component, o.NewBudget, o.Split})
}

func (o NeedCheaperOptions) MarshalJSON() ([]byte, error) {
	type pin struct {
		Component Component   `json:"component"`
		Flights   []Candidate `json:"flights,omitempty"`
		Hotel     *Candidate  `json:"hotel,omitempty"`
	}
	return json.Marshal(struct {
		Status    OutcomeKind `json:"status"`
		Component Component   `json:"component"`
		NewBudget float64     `json:"new_budget"`
		Split     BudgetSplit `json:"allocation"`
		Pinned    pin         `json:"pinned_other"`
	}{o.Kind(), o.Component, o.NewBudget, o.Split, pin(o.Pinned)})
}

func (o Infeasible) MarshalJSON() ([]byte, error) {
	cause := ""
	if o.Cause != nil {
		cause = o.Cause.Error()
	}
	return json.Marshal(struct {
		Status OutcomeKind `json:"status"`
		Reason string      `json:"reason"`
		Cause  string      `json:"cause,omitempty"`
	}{o.Kind(), o.Reason, cause})
}
