package alarm

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// MediaKind names one of the media slots of an alarm.
type MediaKind string

const (
	// MediaImage is the background image shown while the alarm rings.
	MediaImage MediaKind = "image"
	// MediaVideo is played once when the alarm fires.
	MediaVideo MediaKind = "video"
	// MediaAudio is looped until the alarm is dismissed.
	MediaAudio MediaKind = "audio"
)

//nolint:gochecknoglobals // Read-only lookup table.
var mediaExtensions = map[MediaKind][]string{
	MediaImage: {".jpg", ".jpeg", ".png"},
	MediaVideo: {".mp4", ".avi"},
	MediaAudio: {".mp3", ".wav"},
}

// Media holds the optional files presented when the alarm fires.
type Media struct {
	Image string `yaml:"image"`
	Video string `yaml:"video"`
	Audio string `yaml:"audio"`
}

// IsEmpty reports whether no media is set.
func (m Media) IsEmpty() bool {
	return m.Image == "" && m.Video == "" && m.Audio == ""
}

// Path returns the file configured for kind.
func (m Media) Path(kind MediaKind) string {
	switch kind {
	case MediaImage:
		return m.Image
	case MediaVideo:
		return m.Video
	case MediaAudio:
		return m.Audio
	default:
		return ""
	}
}

// Merge returns m with every empty slot filled from fallback.
func (m Media) Merge(fallback Media) Media {
	if m.Image == "" {
		m.Image = fallback.Image
	}

	if m.Video == "" {
		m.Video = fallback.Video
	}

	if m.Audio == "" {
		m.Audio = fallback.Audio
	}

	return m
}

// Validate checks every set file against the extensions accepted for its slot.
func (m Media) Validate() error {
	for _, kind := range []MediaKind{MediaImage, MediaVideo, MediaAudio} {
		path := m.Path(kind)
		if path == "" {
			continue
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !slices.Contains(mediaExtensions[kind], ext) {
			return fmt.Errorf("%s %q: %w", kind, path, ErrUnsupportedMedia)
		}
	}

	return nil
}
