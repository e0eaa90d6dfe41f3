package batch

import "github.com/maxbolgarin/errm"

var (
	ErrSiteDirRequired = errm.New("site dir is required")
	ErrSiteDirNotFound = errm.New("site dir not found")
)
