package openai

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
	"github.com/signalpath/recall/normalize"
)

// tokenCounter reports the billable token count of a text.
type tokenCounter interface {
	Count(text string) int
}

// newTokenCounter returns a tiktoken-based counter for the model, falling
// back to the cl100k_base encoding for models tiktoken does not know, and
// to a character heuristic when no encoding can be loaded at all (e.g.
// offline against a local embedding server).
func newTokenCounter(model string) tokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		slog.Debug("tiktoken unavailable, using character heuristic", "model", model, "err", err)
		return heuristicCounter{}
	}
	return &tiktokenCounter{encoding: enc}
}

// tiktokenCounter counts tokens with the model's actual BPE encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// heuristicCounter approximates tokens at 4 characters each.
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	return normalize.EstimateTokens(text)
}
