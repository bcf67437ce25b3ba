// Package qr renders QR images for short URLs.
package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// DataURL encodes target as a PNG QR code and returns it as a
// base64 data URL suitable for embedding in a JSON response.
func DataURL(target string) (string, error) {
	png, err := qrcode.Encode(target, qrcode.Medium, imageSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
