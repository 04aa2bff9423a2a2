//go:build !linux && !darwin

package config

const (
	DEFAULT_CREDENTIALS = ".google"
	DEFAULT_PLAN        = "rollover.yaml"
)
