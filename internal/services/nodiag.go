//go:build !diag

package services

func debugStrategies(FaultOptions) []Strategy {
	return nil
}
