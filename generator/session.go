package generator

import (
	"log"

	"github.com/google/uuid"
)

const previewRunes = 200

// Run holds the transient state of one pipeline execution. It is owned by a
// single Generate call and must not be shared.
type Run struct {
	ID           string
	MaxBudgetUSD float64

	finalText string
	totalCost float64
	subtype   string
	numTurns  int

	verbose bool
	logger  *log.Logger
}

func newRun(maxBudgetUSD float64, verbose bool, logger *log.Logger) *Run {
	return &Run{
		ID:           uuid.NewString(),
		MaxBudgetUSD: maxBudgetUSD,
		verbose:      verbose,
		logger:       logger,
	}
}

// observe applies one session message. Every text block replaces the final
// text, so only the last block of the whole session survives.
func (r *Run) observe(msg Message) {
	switch msg.Type {
	case MessageAssistant:
		for _, block := range msg.Content {
			if block.Type != "text" {
				continue
			}
			r.finalText = block.Text
			if r.verbose {
				label := "[orchestrator]"
				if msg.ParentToolUseID != "" {
					label = "  [subagent]"
				}
				r.logger.Printf("%s %s...", label, truncateRunes(block.Text, previewRunes))
			}
		}
	case MessageResult:
		if msg.Result == nil {
			return
		}
		r.totalCost = msg.Result.TotalCostUSD
		r.subtype = msg.Result.Subtype
		r.numTurns = msg.Result.NumTurns
		if r.verbose {
			r.logger.Printf("--- Pipeline Complete ---")
			r.logger.Printf("Status: %s", r.subtype)
			r.logger.Printf("Cost: $%.4f", r.totalCost)
			r.logger.Printf("Turns: %d", r.numTurns)
		}
	}
}

func (r *Run) FinalText() string      { return r.finalText }
func (r *Run) TotalCostUSD() float64 { return r.totalCost }

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
