package dispatch

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// charsPerToken is the rough ratio used when no tokenizer is available.
const charsPerToken = 4

// messageOverhead approximates the per-message framing tokens of chat formats.
const messageOverhead = 4

// Estimator approximates token counts for endpoints that report no usage.
// Counts use the cl100k_base encoding; when that cannot be loaded it falls
// back to one token per four characters.
type Estimator struct {
	once  sync.Once
	codec tokenizer.Codec
}

// NewEstimator creates an Estimator. The codec is loaded on first use.
func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) load() tokenizer.Codec {
	e.once.Do(func() {
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			e.codec = codec
		}
	})
	return e.codec
}

// Count returns the estimated token count of text.
func (e *Estimator) Count(text string) int64 {
	if text == "" {
		return 0
	}
	if codec := e.load(); codec != nil {
		if ids, _, err := codec.Encode(text); err == nil {
			return int64(len(ids))
		}
	}
	return fallbackCount(text)
}

// CountRequest estimates the input tokens of a request.
func (e *Estimator) CountRequest(req Request) int64 {
	var n int64
	if req.Preamble != "" {
		n += e.Count(req.Preamble) + messageOverhead
	}
	for _, m := range req.Messages {
		n += e.Count(m.Content) + messageOverhead
	}
	return n
}

func fallbackCount(text string) int64 {
	n := int64(len([]rune(text)) / charsPerToken)
	if n == 0 {
		n = 1
	}
	return n
}
