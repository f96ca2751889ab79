package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/i474232898/coronaboard-data/internal/stats"
)

// FileProvider reads records from a JSON dump on disk. The file holds either a
// bare array of records or the API envelope {"result": [...]}.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Name() string {
	return "file:" + p.path
}

func (p *FileProvider) FetchAll(ctx context.Context) ([]stats.DailyStatRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []stats.DailyStatRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p.path, err)
		}
		return records, nil
	}

	var payload struct {
		Result []stats.DailyStatRecord `json:"result"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.path, err)
	}
	return payload.Result, nil
}
