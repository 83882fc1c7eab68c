package alarm

import "errors"

var (
	// ErrInvalidFormat is returned when a time string is not a valid HH:MM value.
	ErrInvalidFormat = errors.New("invalid alarm time format, expected HH:MM")
	// ErrAlreadyArmed is returned when an alarm is armed while another one is pending.
	ErrAlreadyArmed = errors.New("alarm is already armed")
	// ErrUnsupportedMedia is returned when a media file has an unexpected extension.
	ErrUnsupportedMedia = errors.New("unsupported media file")
)
