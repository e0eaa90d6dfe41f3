package gitinfo

import "github.com/maxbolgarin/errm"

var (
	ErrNotRepository = errm.New("not a git repository")
	ErrNoRemote      = errm.New("no origin remote")
)
