package settings

import "errors"

var (
	// ErrNotExist reports that the settings file is missing or is not a
	// regular file.
	ErrNotExist = errors.New("settings file does not exist")

	// ErrLoad reports that the settings file exists but could not be read
	// or parsed. The underlying cause is wrapped alongside it.
	ErrLoad = errors.New("settings file not loadable")
)
