package text

import (
	"encoding/hex"
	"strconv"

	"github.com/thingset-io/thingset-core/registry"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func hexEncode(b []byte) string { return hex.EncodeToString(b) }

func hexDecode(s string) ([]byte, error) { return hex.DecodeString(s) }

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, registry.Wrap(registry.ErrKindBadRequest, err, "invalid integer literal "+s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, registry.Wrap(registry.ErrKindBadRequest, err, "invalid number literal "+s)
	}
	return f, nil
}
