package engine

import "github.com/tessro/speck/pkg/spotifyid"

// EventKind enumerates the player event variants.
type EventKind int

const (
	KindStopped EventKind = iota
	KindLoading
	KindPreloading
	KindPlaying
	KindPaused
	KindTimeToPreloadNextTrack
	KindEndOfTrack
	KindUnavailable
	KindVolumeChanged
	KindSeeked
	KindPositionCorrection
	KindTrackChanged
	KindSessionConnected
	KindSessionDisconnected
	KindSessionClientChanged
	KindShuffleChanged
	KindRepeatChanged
	KindAutoPlayChanged
	KindFilterExplicitContentChanged

	kindCount
)

var kindNames = [kindCount]string{
	KindStopped:                      "stopped",
	KindLoading:                      "loading",
	KindPreloading:                   "preloading",
	KindPlaying:                      "playing",
	KindPaused:                       "paused",
	KindTimeToPreloadNextTrack:       "time_to_preload_next_track",
	KindEndOfTrack:                   "end_of_track",
	KindUnavailable:                  "unavailable",
	KindVolumeChanged:                "volume_changed",
	KindSeeked:                       "seeked",
	KindPositionCorrection:           "position_correction",
	KindTrackChanged:                 "track_changed",
	KindSessionConnected:             "session_connected",
	KindSessionDisconnected:          "session_disconnected",
	KindSessionClientChanged:         "session_client_changed",
	KindShuffleChanged:               "shuffle_changed",
	KindRepeatChanged:                "repeat_changed",
	KindAutoPlayChanged:              "auto_play_changed",
	KindFilterExplicitContentChanged: "filter_explicit_content_changed",
}

func (k EventKind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// AllKinds returns every event kind in declaration order.
func AllKinds() []EventKind {
	kinds := make([]EventKind, 0, kindCount)
	for k := EventKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Event is a player event. The set of implementations is closed.
type Event interface {
	Kind() EventKind
}

type Stopped struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
}

type Loading struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
	PositionMs    uint32
}

type Preloading struct {
	TrackID spotifyid.ID
}

type Playing struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
	PositionMs    uint32
	DurationMs    uint32
}

type Paused struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
	PositionMs    uint32
	DurationMs    uint32
}

type TimeToPreloadNextTrack struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
}

type EndOfTrack struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
}

type Unavailable struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
}

type VolumeChanged struct {
	Volume uint16
}

type Seeked struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
	PositionMs    uint32
}

type PositionCorrection struct {
	PlayRequestID uint64
	TrackID       spotifyid.ID
	PositionMs    uint32
}

// TrackChanged reports the audio item now loaded.
type TrackChanged struct {
	TrackID    spotifyid.ID
	DurationMs uint32
}

type SessionConnected struct {
	ConnectionID string
	UserName     string
}

type SessionDisconnected struct {
	ConnectionID string
	UserName     string
}

type SessionClientChanged struct {
	ClientID        string
	ClientName      string
	ClientBrandName string
	ClientModelName string
}

type ShuffleChanged struct {
	Shuffle bool
}

type RepeatChanged struct {
	Context bool
	Track   bool
}

type AutoPlayChanged struct {
	AutoPlay bool
}

type FilterExplicitContentChanged struct {
	Filter bool
}

func (Stopped) Kind() EventKind                      { return KindStopped }
func (Loading) Kind() EventKind                      { return KindLoading }
func (Preloading) Kind() EventKind                   { return KindPreloading }
func (Playing) Kind() EventKind                      { return KindPlaying }
func (Paused) Kind() EventKind                       { return KindPaused }
func (TimeToPreloadNextTrack) Kind() EventKind       { return KindTimeToPreloadNextTrack }
func (EndOfTrack) Kind() EventKind                   { return KindEndOfTrack }
func (Unavailable) Kind() EventKind                  { return KindUnavailable }
func (VolumeChanged) Kind() EventKind                { return KindVolumeChanged }
func (Seeked) Kind() EventKind                       { return KindSeeked }
func (PositionCorrection) Kind() EventKind           { return KindPositionCorrection }
func (TrackChanged) Kind() EventKind                 { return KindTrackChanged }
func (SessionConnected) Kind() EventKind             { return KindSessionConnected }
func (SessionDisconnected) Kind() EventKind          { return KindSessionDisconnected }
func (SessionClientChanged) Kind() EventKind         { return KindSessionClientChanged }
func (ShuffleChanged) Kind() EventKind               { return KindShuffleChanged }
func (RepeatChanged) Kind() EventKind                { return KindRepeatChanged }
func (AutoPlayChanged) Kind() EventKind              { return KindAutoPlayChanged }
func (FilterExplicitContentChanged) Kind() EventKind { return KindFilterExplicitContentChanged }
