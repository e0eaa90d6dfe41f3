package config

import "github.com/maxbolgarin/errm"

var ErrConfigNotFound = errm.New("config file not found")
