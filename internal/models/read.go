package models

// RangeHashRequest asks for the content hash of lines [Start, End) of Path.
type RangeHashRequest struct {
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// RangeHashResponse carries the hash and the lines it was computed over.
type RangeHashResponse struct {
	Hash       string   `json:"hash"`
	Lines      []string `json:"lines"`
	TotalLines int      `json:"total_lines"`
}
