package progress

import (
	"fmt"

	"github.com/rowanvale/ember/internal/model"
)

// Insights builds the weekly-review messages from per-habit summaries. Rules
// are evaluated in order and every applicable one is included.
func Insights(habits []model.HabitWeekSummary) []string {
	var out []string

	if len(habits) == 0 {
		return []string{"You have no habits yet. Create one to start building your week."}
	}

	perfect := 0
	worst := habits[0]
	for _, h := range habits {
		if h.Consistency >= 100 {
			perfect++
		}
		if h.Consistency < worst.Consistency {
			worst = h
		}
	}

	if perfect == len(habits) {
		out = append(out, "Perfect week! Every habit hit 100%. Keep the ember burning.")
	} else if perfect >= 1 {
		out = append(out, fmt.Sprintf("You completed %d of %d habits at 100%% this week.", perfect, len(habits)))
	}

	if worst.Consistency > 0 && worst.Consistency < 50 {
		out = append(out, fmt.Sprintf("%q is slipping at %d%%. A small win there would go a long way.", worst.Title, worst.Consistency))
	}

	return out
}
