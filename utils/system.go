package utils

import (
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
)

// GetOptimalWorkerCount determines the number of workers based on config and system resources.
func GetOptimalWorkerCount(configValue string) int {
	if manualWorkers, err := strconv.Atoi(configValue); err == nil && manualWorkers > 0 {
		log.Info().Int("workers", manualWorkers).Msg("using configured number of workers")
		return manualWorkers
	}

	if configValue != "auto" {
		log.Warn().Str("workers", configValue).Msg("invalid workers value, defaulting to auto")
	}

	// Logical cores: the work is I/O bound.
	cpuCores, err := cpu.Counts(true)
	if err != nil {
		log.Warn().Err(err).Int("workers", 2).Msg("could not detect CPU cores")
		return 2
	}

	// Half the cores, at least 1 and at most 16.
	optimalCount := cpuCores / 2
	if optimalCount < 1 {
		optimalCount = 1
	}
	if optimalCount > 16 {
		optimalCount = 16
	}

	log.Info().Int("cores", cpuCores).Int("workers", optimalCount).Msg("worker count set automatically")
	return optimalCount
}
