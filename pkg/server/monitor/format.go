package monitor

import (
	"fmt"
	"math"
	"strconv"
)

// FormatBytes renders sizes above 1024 bytes in whole kB.
func FormatBytes(n int64) string {
	if n > 1024 {
		return fmt.Sprintf("%dkB", int64(math.Round(float64(n)/1024)))
	}
	return strconv.FormatInt(n, 10)
}

func FormatHeap(heap, minHeap int64) string {
	text := FormatBytes(heap)
	if minHeap > 0 {
		text += fmt.Sprintf(" (min %dkB)", int64(math.Round(float64(minHeap)/1024)))
	}
	return text
}

// FormatUptime renders milliseconds as hh:mm:ss. Hours wrap at 24.
func FormatUptime(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", (seconds/3600)%24, (seconds/60)%60, seconds%60)
}

func DeviceAddress(serial string) string {
	if serial == "" {
		return ""
	}
	return "http://vzero-" + serial + ".local"
}
