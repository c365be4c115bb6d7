package models

// SpliceRequest describes a single line-range replacement in one file.
type SpliceRequest struct {
	// Path is the file to edit. Relative paths resolve against the process working directory.
	Path string `json:"path"`
	// Start is the 0-based index of the first line to remove.
	Start int `json:"start"`
	// End is the 0-based index one past the last line to remove.
	// Start == End removes nothing and inserts the replacement before line Start.
	End int `json:"end"`
	// Replacement is the text inserted at Start. Its line breaks define the
	// inserted lines; an empty string inserts no lines.
	Replacement string `json:"replacement,omitempty"`
	// ExpectedHash, when set, must equal the content hash of lines [Start, End)
	// before anything is written.
	ExpectedHash string `json:"expected_hash,omitempty"`
	// Lock takes an advisory OS lock on Path for the duration of the edit.
	Lock bool `json:"lock,omitempty"`
}

// SpliceResponse reports what a successful splice did.
type SpliceResponse struct {
	// OriginalTotalLines is the line count read from disk.
	OriginalTotalLines int `json:"original_total_lines"`
	// RemovedLines is End - Start.
	RemovedLines int `json:"removed_lines"`
	// InsertedLines is the number of lines in the replacement block.
	InsertedLines int `json:"inserted_lines"`
	// NewTotalLines is the line count written back.
	NewTotalLines int `json:"new_total_lines"`
	// RemovedHash is the content hash of the lines that were removed.
	RemovedHash string `json:"removed_hash"`
}
