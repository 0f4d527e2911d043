package deedseed

import (
	"github.com/deedlabs/deedseed/common"
)

var log = common.NewLog("deedseed")
