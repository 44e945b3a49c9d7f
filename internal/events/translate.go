// Package events translates engine player events into the frozen bridge
// representation and delivers them one at a time to a polling host.
package events

import (
	"fmt"

	speckerrors "github.com/tessro/speck/internal/errors"
	"github.com/tessro/speck/pkg/engine"
	"github.com/tessro/speck/pkg/spotifyid"
)

// Kind names a bridge event variant. Values are part of the bridge
// contract and never change.
type Kind string

const (
	KindStopped                      Kind = "stopped"
	KindLoading                      Kind = "loading"
	KindPreloading                   Kind = "preloading"
	KindPlaying                      Kind = "playing"
	KindPaused                       Kind = "paused"
	KindTimeToPreloadNextTrack       Kind = "time_to_preload_next_track"
	KindEndOfTrack                   Kind = "end_of_track"
	KindUnavailable                  Kind = "unavailable"
	KindVolumeChanged                Kind = "volume_changed"
	KindSeeked                       Kind = "seeked"
	KindPositionCorrection           Kind = "position_correction"
	KindTrackChanged                 Kind = "track_changed"
	KindSessionConnected             Kind = "session_connected"
	KindSessionDisconnected          Kind = "session_disconnected"
	KindSessionClientChanged         Kind = "session_client_changed"
	KindShuffleChanged               Kind = "shuffle_changed"
	KindRepeatChanged                Kind = "repeat_changed"
	KindAutoPlayChanged              Kind = "auto_play_changed"
	KindFilterExplicitContentChanged Kind = "filter_explicit_content_changed"
)

// BridgeEvent is a flat tagged union safe to hand across a foreign
// function boundary. Kind selects which fields are meaningful.
type BridgeEvent struct {
	Kind          Kind   `json:"kind"`
	PlayRequestID uint64 `json:"play_request_id"`
	TrackID       string `json:"track_id"`
	PositionMs    uint32 `json:"position_ms"`
	DurationMs    uint32 `json:"duration_ms"`
	Volume        uint16 `json:"volume"`

	ConnectionID    string `json:"connection_id"`
	UserName        string `json:"user_name"`
	ClientID        string `json:"client_id"`
	ClientName      string `json:"client_name"`
	ClientBrandName string `json:"client_brand_name"`
	ClientModelName string `json:"client_model_name"`

	// Enabled carries the flag for shuffle, auto play and explicit filter changes.
	Enabled       bool `json:"enabled"`
	RepeatContext bool `json:"repeat_context"`
	RepeatTrack   bool `json:"repeat_track"`
}

// Translate maps an engine event onto its bridge form. Every engine
// variant has a case; an unknown variant is a decode failure.
func Translate(ev engine.Event) (BridgeEvent, error) {
	switch e := ev.(type) {
	case engine.Stopped:
		return withTrack(BridgeEvent{Kind: KindStopped, PlayRequestID: e.PlayRequestID}, e.TrackID)
	case engine.Loading:
		return withTrack(BridgeEvent{Kind: KindLoading, PlayRequestID: e.PlayRequestID, PositionMs: e.PositionMs}, e.TrackID)
	case engine.Preloading:
		return withTrack(BridgeEvent{Kind: KindPreloading}, e.TrackID)
	case engine.Playing:
		return withTrack(BridgeEvent{
			Kind:          KindPlaying,
			PlayRequestID: e.PlayRequestID,
			PositionMs:    e.PositionMs,
			DurationMs:    e.DurationMs,
		}, e.TrackID)
	case engine.Paused:
		return withTrack(BridgeEvent{
			Kind:          KindPaused,
			PlayRequestID: e.PlayRequestID,
			PositionMs:    e.PositionMs,
			DurationMs:    e.DurationMs,
		}, e.TrackID)
	case engine.TimeToPreloadNextTrack:
		return withTrack(BridgeEvent{Kind: KindTimeToPreloadNextTrack, PlayRequestID: e.PlayRequestID}, e.TrackID)
	case engine.EndOfTrack:
		return withTrack(BridgeEvent{Kind: KindEndOfTrack, PlayRequestID: e.PlayRequestID}, e.TrackID)
	case engine.Unavailable:
		return withTrack(BridgeEvent{Kind: KindUnavailable, PlayRequestID: e.PlayRequestID}, e.TrackID)
	case engine.VolumeChanged:
		return BridgeEvent{Kind: KindVolumeChanged, Volume: e.Volume}, nil
	case engine.Seeked:
		return withTrack(BridgeEvent{Kind: KindSeeked, PlayRequestID: e.PlayRequestID, PositionMs: e.PositionMs}, e.TrackID)
	case engine.PositionCorrection:
		return withTrack(BridgeEvent{Kind: KindPositionCorrection, PlayRequestID: e.PlayRequestID, PositionMs: e.PositionMs}, e.TrackID)
	case engine.TrackChanged:
		return withTrack(BridgeEvent{Kind: KindTrackChanged, DurationMs: e.DurationMs}, e.TrackID)
	case engine.SessionConnected:
		return BridgeEvent{Kind: KindSessionConnected, ConnectionID: e.ConnectionID, UserName: e.UserName}, nil
	case engine.SessionDisconnected:
		return BridgeEvent{Kind: KindSessionDisconnected, ConnectionID: e.ConnectionID, UserName: e.UserName}, nil
	case engine.SessionClientChanged:
		return BridgeEvent{
			Kind:            KindSessionClientChanged,
			ClientID:        e.ClientID,
			ClientName:      e.ClientName,
			ClientBrandName: e.ClientBrandName,
			ClientModelName: e.ClientModelName,
		}, nil
	case engine.ShuffleChanged:
		return BridgeEvent{Kind: KindShuffleChanged, Enabled: e.Shuffle}, nil
	case engine.RepeatChanged:
		return BridgeEvent{Kind: KindRepeatChanged, RepeatContext: e.Context, RepeatTrack: e.Track}, nil
	case engine.AutoPlayChanged:
		return BridgeEvent{Kind: KindAutoPlayChanged, Enabled: e.AutoPlay}, nil
	case engine.FilterExplicitContentChanged:
		return BridgeEvent{Kind: KindFilterExplicitContentChanged, Enabled: e.Filter}, nil
	default:
		return BridgeEvent{}, fmt.Errorf("%w: unhandled event %T", speckerrors.ErrDecodeFailure, ev)
	}
}

func withTrack(ev BridgeEvent, id spotifyid.ID) (BridgeEvent, error) {
	b62, err := id.ToBase62()
	if err != nil {
		return BridgeEvent{}, fmt.Errorf("%s: %w", ev.Kind, err)
	}
	ev.TrackID = b62
	return ev, nil
}
