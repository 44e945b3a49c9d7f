// Package spotifyid implements the compact content identifier used by the
// streaming service: a 128-bit value rendered as 22 base62 characters,
// optionally tagged with the item type it refers to.
package spotifyid

import (
	"fmt"
	"math/bits"
	"strings"

	speckerrors "github.com/tessro/speck/internal/errors"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Base62Length is the length of a textual id.
	Base62Length = 22

	uriPrefix = "spotify:"
)

// ItemType indicates what kind of content an ID refers to.
type ItemType string

const (
	ItemTypeUnknown ItemType = "unknown"
	ItemTypeTrack   ItemType = "track"
	ItemTypeEpisode ItemType = "episode"
	ItemTypeLocal   ItemType = "local"
)

// ID is a content identifier. The zero value is an unknown-typed id 0.
type ID struct {
	hi, lo   uint64
	itemType ItemType
	local    string
}

// FromBase62 parses a bare 22 character base62 id. The result has an
// unknown item type; callers must set one with WithType before dispatch.
func FromBase62(s string) (ID, error) {
	if len(s) != Base62Length {
		return ID{}, fmt.Errorf("%w: %q must be %d characters", speckerrors.ErrInvalidTrackID, s, Base62Length)
	}

	var hi, lo uint64
	for i := 0; i < len(s); i++ {
		d := strings.IndexByte(alphabet, s[i])
		if d < 0 {
			return ID{}, fmt.Errorf("%w: %q has invalid character %q", speckerrors.ErrInvalidTrackID, s, s[i])
		}

		var ok bool
		hi, lo, ok = mulAdd62(hi, lo, uint64(d))
		if !ok {
			return ID{}, fmt.Errorf("%w: %q overflows 128 bits", speckerrors.ErrInvalidTrackID, s)
		}
	}

	return ID{hi: hi, lo: lo, itemType: ItemTypeUnknown}, nil
}

// FromURI parses a "spotify:<type>:<id>" URI.
func FromURI(uri string) (ID, error) {
	rest, ok := strings.CutPrefix(uri, uriPrefix)
	if !ok {
		return ID{}, fmt.Errorf("%w: %q is not a spotify URI", speckerrors.ErrInvalidTrackID, uri)
	}

	kind, value, ok := strings.Cut(rest, ":")
	if !ok || value == "" {
		return ID{}, fmt.Errorf("%w: %q is missing an id", speckerrors.ErrInvalidTrackID, uri)
	}

	switch ItemType(kind) {
	case ItemTypeLocal:
		return Local(value), nil
	case ItemTypeTrack, ItemTypeEpisode:
		id, err := FromBase62(value)
		if err != nil {
			return ID{}, err
		}
		return id.WithType(ItemType(kind)), nil
	default:
		return ID{}, fmt.Errorf("%w: unsupported item type %q", speckerrors.ErrInvalidTrackID, kind)
	}
}

// Parse accepts either a bare base62 id or a URI.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, uriPrefix) {
		return FromURI(s)
	}
	return FromBase62(s)
}

// Local returns an id for a local file. Local ids have no base62 form.
func Local(path string) ID {
	return ID{itemType: ItemTypeLocal, local: path}
}

// WithType returns a copy of id tagged with t.
func (id ID) WithType(t ItemType) ID {
	id.itemType = t
	return id
}

// Type returns the item type; the zero value reports unknown.
func (id ID) Type() ItemType {
	if id.itemType == "" {
		return ItemTypeUnknown
	}
	return id.itemType
}

// ToBase62 renders the id as 22 base62 characters.
func (id ID) ToBase62() (string, error) {
	if id.itemType == ItemTypeLocal {
		return "", fmt.Errorf("%w: local id %q has no base62 form", speckerrors.ErrDecodeFailure, id.local)
	}

	var buf [Base62Length]byte
	hi, lo := id.hi, id.lo
	for i := Base62Length - 1; i >= 0; i-- {
		var r uint64
		hi, lo, r = divMod62(hi, lo)
		buf[i] = alphabet[r]
	}
	return string(buf[:]), nil
}

// URI renders the id as "spotify:<type>:<id>".
func (id ID) URI() (string, error) {
	if id.itemType == ItemTypeLocal {
		return uriPrefix + string(ItemTypeLocal) + ":" + id.local, nil
	}
	b62, err := id.ToBase62()
	if err != nil {
		return "", err
	}
	return uriPrefix + string(id.Type()) + ":" + b62, nil
}

// String returns the URI form, or a placeholder if it cannot be rendered.
func (id ID) String() string {
	uri, err := id.URI()
	if err != nil {
		return "spotify:invalid"
	}
	return uri
}

// mulAdd62 computes (hi,lo)*62 + d, reporting false on 128-bit overflow.
func mulAdd62(hi, lo, d uint64) (uint64, uint64, bool) {
	carryLo, newLo := bits.Mul64(lo, 62)
	overflow, newHi := bits.Mul64(hi, 62)
	if overflow != 0 {
		return 0, 0, false
	}

	var c uint64
	newHi, c = bits.Add64(newHi, carryLo, 0)
	if c != 0 {
		return 0, 0, false
	}

	newLo, c = bits.Add64(newLo, d, 0)
	newHi, c = bits.Add64(newHi, 0, c)
	if c != 0 {
		return 0, 0, false
	}
	return newHi, newLo, true
}

func divMod62(hi, lo uint64) (uint64, uint64, uint64) {
	qHi, r := hi/62, hi%62
	qLo, r := bits.Div64(r, lo, 62)
	return qHi, qLo, r
}
