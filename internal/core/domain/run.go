package domain

// ScanRequest asks the worker to execute one scan run over a directory of
// source documents.
type ScanRequest struct {
	RunID    string `json:"run_id"`
	InputDir string `json:"input_dir"`
}
