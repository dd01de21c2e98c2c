package session

import "time"

// Usage accumulates the cost of one slot's calls.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	Calls        int
	Rounds       int
	Elapsed      time.Duration
}

// Add returns the sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		Calls:        u.Calls + o.Calls,
		Rounds:       u.Rounds + o.Rounds,
		Elapsed:      u.Elapsed + o.Elapsed,
	}
}

// SlotSummary is one line of the summary table.
type SlotSummary struct {
	Ordinal int
	Tag     string
	ModelID string
	Name    string
	Status  Status
	Usage   Usage
	Cost    float64
}

// Summary reports the counters of a chat.
type Summary struct {
	Elapsed            time.Duration
	ConversationRounds int
	Slots              []SlotSummary
	Total              Usage
	TotalCost          float64
	// Final is set on the summary published by /exit.
	Final bool
}

// Summary collects the per-slot and total counters. Only occupied slots are
// listed.
func (s *State) Summary(final bool) Summary {
	sum := Summary{
		Elapsed:            s.now().Sub(s.started),
		ConversationRounds: s.conversationRounds,
		Final:              final,
	}
	for _, sl := range s.OccupiedSlots() {
		u := s.Usage(sl.Ordinal)
		cost := sl.Model.Cost(u.InputTokens, u.OutputTokens)
		sum.Slots = append(sum.Slots, SlotSummary{
			Ordinal: sl.Ordinal,
			Tag:     sl.Tag(),
			ModelID: sl.Model.ID,
			Name:    sl.Model.DisplayName(),
			Status:  sl.Status,
			Usage:   u,
			Cost:    cost,
		})
		sum.Total = sum.Total.Add(u)
		sum.TotalCost += cost
	}
	return sum
}
