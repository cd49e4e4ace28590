package useragent

import (
	"github.com/crowdsecurity/go-cs-lib/version"
)

// Default is sent to the compilation service unless configured otherwise.
func Default() string {
	return "closure/" + version.String() + "-" + version.System
}
