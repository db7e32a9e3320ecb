package entities

import "time"

// RunSummary describes one completed pipeline run
type RunSummary struct {
	InputPath    string        `json:"input_path"`
	OutputPath   string        `json:"output_path"`
	SortMode     string        `json:"sort_mode"`
	Stats        ParseStats    `json:"stats"`
	Entries      int           `json:"entries"`
	Overrides    int           `json:"overrides"`
	Conflicts    int           `json:"conflicts"`
	BytesWritten int           `json:"bytes_written"`
	Duration     time.Duration `json:"duration"`
	FinishedAt   time.Time     `json:"finished_at"`
}
