package identity

import "github.com/maxbolgarin/errm"

var errLookupDisabled = errm.New("remote lookup is disabled")
