package build

import (
	"os"
	"time"

	"github.com/vesper-os/forge/util"
)

// NeedsUpdate reports whether `output` must be regenerated. A missing output
// always needs an update. Otherwise only the latest input matters: any input
// file or explicit timestamp newer than the output triggers a rebuild. An
// input file that does not exist counts as the zero time.
func NeedsUpdate(output string, inputs []string, stamps ...time.Time) bool {
	stat, err := os.Stat(output)
	if err != nil {
		return true
	}
	produced := stat.ModTime()
	for _, input := range inputs {
		if util.ModTime(input).After(produced) {
			return true
		}
	}
	for _, stamp := range stamps {
		if stamp.After(produced) {
			return true
		}
	}
	return false
}
