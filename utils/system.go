package utils

import (
	"runtime"
)

// MemUsage reports the heap as key value pairs for a structured logger, sizes in MiB
func MemUsage() []interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	// For info on each, see: https://golang.org/pkg/runtime/#MemStats
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}
	return []interface{}{
		"alloc", bToMb(m.Alloc),
		"totalAlloc", bToMb(m.TotalAlloc),
		"sys", bToMb(m.Sys),
		"numGC", m.NumGC,
	}
}
