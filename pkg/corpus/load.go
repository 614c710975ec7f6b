package corpus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"personas/pkg/utils"
)

// ReadJSONL decodes one entry per line. Blank lines are ignored and lines that do not
// decode into an Entry are skipped and counted. limit > 0 stops after that many entries.
func ReadJSONL(r io.Reader, limit int) (entries []Entry, skipped int, err error) {
	br := bufio.NewReader(r)
	entries = make([]Entry, 0)
	line := 0
	for limit <= 0 || len(entries) < limit {
		raw, readErr := br.ReadBytes('\n')
		if len(raw) > 0 {
			line++
			raw = bytes.TrimSpace(raw)
			if len(raw) > 0 {
				var e Entry
				if err := json.Unmarshal(raw, &e); err != nil {
					skipped++
					log.Debug("skipping malformed corpus line", "line", line, "error", err)
				} else {
					entries = append(entries, e)
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return entries, skipped, fmt.Errorf("read corpus line %d: %w", line+1, readErr)
		}
	}
	return entries, skipped, nil
}

// Open loads a corpus from a local .jsonl file, a local .json array file, or an
// http(s) URL serving JSON lines.
func Open(ctx context.Context, client *http.Client, location string, limit int) ([]Entry, error) {
	if location == "" {
		return nil, errors.New("no corpus location configured")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetch(ctx, client, location, limit)
	}

	if strings.EqualFold(filepath.Ext(location), ".json") {
		entries, err := utils.Load[[]Entry](location)
		if err != nil {
			return nil, fmt.Errorf("load corpus %s: %w", location, err)
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		return entries, nil
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	entries, skipped, err := ReadJSONL(f, limit)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", location, err)
	}
	if skipped > 0 {
		log.Warn("skipped malformed corpus lines", "source", location, "skipped", skipped)
	}
	return entries, nil
}

func fetch(ctx context.Context, client *http.Client, url string, limit int) ([]Entry, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build corpus request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch corpus %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	entries, skipped, err := ReadJSONL(resp.Body, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus %s: %w", url, err)
	}
	if skipped > 0 {
		log.Warn("skipped malformed corpus lines", "source", url, "skipped", skipped)
	}
	return entries, nil
}
