package config

const (
	_etc = "/usr/local/etc/budget-sheets"

	DEFAULT_CREDENTIALS = _etc + "/.google"
	DEFAULT_PLAN        = _etc + "/rollover.yaml"
)
