package config

const (
	_etc = "/usr/local/etc/com.github.budget-sheets"

	DEFAULT_CREDENTIALS = _etc + "/.google"
	DEFAULT_PLAN        = _etc + "/rollover.yaml"
)
