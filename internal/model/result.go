package model

// Result is the outcome of processing one output file
type Result struct {
	Path    string
	URL     string
	Title   string
	Source  string
	Meta    PageMeta
	Changed bool
	Err     error
}

// OK reports whether the file was processed without error
func (r Result) OK() bool {
	return r.Err == nil
}
