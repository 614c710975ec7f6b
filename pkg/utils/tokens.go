package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// NumTokens counts tokens the way the given model would. The encoding is fetched on
// first use, so callers only reach for it when debug logging is on.
func NumTokens(model, text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return 0, err
		}
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
