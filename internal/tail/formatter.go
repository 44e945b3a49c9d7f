package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/speck/internal/events"
	"github.com/tessro/speck/internal/player"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An unparsable template is
// ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an entry as a single line.
func (f *Formatter) Format(e Entry) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Entry) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Received.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Event.Kind))
	}
	parts = append(parts, Describe(e.Event))

	return strings.Join(parts, " ")
}

func (f *Formatter) formatTemplate(e Entry) string {
	ev := e.Event
	data := templateData{
		Kind:          string(ev.Kind),
		Emoji:         eventEmoji(ev.Kind),
		Timestamp:     e.Received,
		Time:          e.Received.Format("15:04:05"),
		PlayRequestID: ev.PlayRequestID,
		TrackID:       ev.TrackID,
		Position:      FormatMillis(ev.PositionMs),
		Duration:      FormatMillis(ev.DurationMs),
		Volume:        player.VolumeToPercent(ev.Volume),
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Kind          string
	Emoji         string
	Timestamp     time.Time
	Time          string
	PlayRequestID uint64
	TrackID       string
	Position      string
	Duration      string
	Volume        int
}

// Describe returns a human-readable description of ev.
func Describe(ev events.BridgeEvent) string {
	switch ev.Kind {
	case events.KindPlaying:
		return fmt.Sprintf("Playing %s [%s / %s]", ev.TrackID, FormatMillis(ev.PositionMs), FormatMillis(ev.DurationMs))
	case events.KindPaused:
		return fmt.Sprintf("Paused %s [%s / %s]", ev.TrackID, FormatMillis(ev.PositionMs), FormatMillis(ev.DurationMs))
	case events.KindLoading:
		return fmt.Sprintf("Loading %s", ev.TrackID)
	case events.KindPreloading:
		return fmt.Sprintf("Preloading %s", ev.TrackID)
	case events.KindTimeToPreloadNextTrack:
		return fmt.Sprintf("Time to preload after %s", ev.TrackID)
	case events.KindStopped:
		return fmt.Sprintf("Stopped %s", ev.TrackID)
	case events.KindEndOfTrack:
		return fmt.Sprintf("Finished %s", ev.TrackID)
	case events.KindUnavailable:
		return fmt.Sprintf("Unavailable: %s", ev.TrackID)
	case events.KindTrackChanged:
		return fmt.Sprintf("Track changed: %s (%s)", ev.TrackID, FormatMillis(ev.DurationMs))
	case events.KindSeeked:
		return fmt.Sprintf("Seeked to %s", FormatMillis(ev.PositionMs))
	case events.KindPositionCorrection:
		return fmt.Sprintf("Position corrected to %s", FormatMillis(ev.PositionMs))
	case events.KindVolumeChanged:
		return fmt.Sprintf("Volume: %d%%", player.VolumeToPercent(ev.Volume))
	case events.KindSessionConnected:
		return fmt.Sprintf("Session connected as %s", ev.UserName)
	case events.KindSessionDisconnected:
		return fmt.Sprintf("Session disconnected (%s)", ev.UserName)
	case events.KindSessionClientChanged:
		return fmt.Sprintf("Client: %s", ev.ClientName)
	case events.KindShuffleChanged:
		return fmt.Sprintf("Shuffle %s", onOff(ev.Enabled))
	case events.KindRepeatChanged:
		return fmt.Sprintf("Repeat context %s, track %s", onOff(ev.RepeatContext), onOff(ev.RepeatTrack))
	case events.KindAutoPlayChanged:
		return fmt.Sprintf("Autoplay %s", onOff(ev.Enabled))
	case events.KindFilterExplicitContentChanged:
		return fmt.Sprintf("Explicit filter %s", onOff(ev.Enabled))
	default:
		return "Unknown event"
	}
}

func eventEmoji(k events.Kind) string {
	switch k {
	case events.KindPlaying:
		return "▶️"
	case events.KindPaused:
		return "⏸️"
	case events.KindLoading, events.KindPreloading, events.KindTimeToPreloadNextTrack:
		return "⏳"
	case events.KindStopped:
		return "⏹️"
	case events.KindEndOfTrack:
		return "✅"
	case events.KindUnavailable:
		return "🚫"
	case events.KindTrackChanged:
		return "🎵"
	case events.KindSeeked, events.KindPositionCorrection:
		return "⏩"
	case events.KindVolumeChanged:
		return "🔊"
	case events.KindSessionConnected, events.KindSessionDisconnected, events.KindSessionClientChanged:
		return "📱"
	case events.KindShuffleChanged, events.KindRepeatChanged, events.KindAutoPlayChanged:
		return "🔁"
	case events.KindFilterExplicitContentChanged:
		return "🔞"
	default:
		return "❓"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// FormatMillis formats a position in milliseconds as m:ss or h:mm:ss.
func FormatMillis(ms uint32) string {
	seconds := int(ms / 1000)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
