package bench

import (
	"fmt"
	"strings"
	"time"
)

func Unit(a int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	n := float64(a)
	unitIdx := 0
	for n > 1024 && unitIdx < len(units)-1 {
		n /= 1024
		unitIdx++
	}
	nstr := fmt.Sprintf("%.2f", n)
	if strings.HasSuffix(nstr, ".00") {
		nstr = nstr[:len(nstr)-3]
	}
	return nstr + units[unitIdx]
}

// Rate renders a throughput out of a byte count and a duration.
func Rate(size int64, d time.Duration) string {
	if d <= 0 {
		return "NaN"
	}
	bps := float64(size) / d.Seconds()
	return Unit(int64(bps)) + "/s"
}
