package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/mcoot/spectrumgame-go/internal/model"
)

// DefaultSize is the PNG edge length in pixels
const DefaultSize = 256

// JoinURL builds the link a participant opens to join a room. With no base
// URL the bare code is returned, which is what gets typed in anyway.
func JoinURL(baseURL string, code model.RoomCode) string {
	if baseURL == "" {
		return string(code)
	}
	return strings.TrimSuffix(baseURL, "/") + "/join?code=" + url.QueryEscape(string(code))
}

// PNG renders the join link for a room as a QR code image
func PNG(baseURL string, code model.RoomCode, size int) ([]byte, error) {
	if !code.Valid() {
		return nil, model.ErrInvalidRoomCode
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(JoinURL(baseURL, code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// Terminal renders the join link as block characters for a terminal
func Terminal(baseURL string, code model.RoomCode) (string, error) {
	if !code.Valid() {
		return "", model.ErrInvalidRoomCode
	}
	q, err := qrcode.New(JoinURL(baseURL, code), qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	return q.ToSmallString(false), nil
}
