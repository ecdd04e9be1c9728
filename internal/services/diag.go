//go:build diag

package services

func debugStrategies(o FaultOptions) []Strategy {
	return []Strategy{DebugExitStrategy{Code: o.DebugExitCode}}
}
