package model

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodePlayer serializes a player record for storage.
func EncodePlayer(p Player) ([]byte, error) {
	b, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode player %s: %w", p.ID, err)
	}
	return b, nil
}

// DecodePlayer is the inverse of EncodePlayer.
func DecodePlayer(b []byte) (Player, error) {
	var p Player
	if err := msgpack.Unmarshal(b, &p); err != nil {
		return Player{}, fmt.Errorf("failed to decode player: %w", err)
	}
	return p, nil
}

// EncodeMatch serializes a match record for storage.
func EncodeMatch(m Match) ([]byte, error) {
	b, err := msgpack.Marshal(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match %s: %w", m.ID, err)
	}
	return b, nil
}

// DecodeMatch is the inverse of EncodeMatch.
func DecodeMatch(b []byte) (Match, error) {
	var m Match
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return Match{}, fmt.Errorf("failed to decode match: %w", err)
	}
	return m, nil
}
