package rcore

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var Verbose bool // set to true to debug

// P is a shortcut for a call to fmt.Printf that implicitly starts
// and ends its message with a newline.
func P(format string, stuff ...interface{}) {
	fmt.Printf("\n "+format+"\n", stuff...)
}

// OurStdout is where new runtimes send cat() and print() output.
var OurStdout io.Writer = os.Stdout

// VPrintf logs through the rcore logger when Verbose is on.
func VPrintf(format string, a ...interface{}) {
	if Verbose {
		logger.Debugf("%s "+format, append([]interface{}{FileLine(2)}, a...)...)
	}
}

var logger = commonlog.GetLogger("rcore")

var loggingOnce sync.Once

// configureLogging sets the process wide commonlog level. Only the
// first Runtime created gets to choose.
func configureLogging(verbosity int) {
	loggingOnce.Do(func() {
		commonlog.Configure(verbosity, nil)
		if verbosity >= 5 {
			Verbose = true
		}
	})
}

func FileLine(depth int) string {
	_, fileName, fileLine, ok := runtime.Caller(depth)
	var s string
	if ok {
		s = fmt.Sprintf("%s:%d", path.Base(fileName), fileLine)
	} else {
		s = ""
	}
	return s
}
