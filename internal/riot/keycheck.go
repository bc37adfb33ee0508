package riot

import (
	"context"
	"errors"
)

// KeyStatus is the outcome of a key probe.
type KeyStatus int

const (
	// KeyUnknown means the probe failed for a reason other than the key.
	KeyUnknown KeyStatus = iota
	KeyValid
	KeyRejected
)

func (s KeyStatus) String() string {
	switch s {
	case KeyValid:
		return "valid"
	case KeyRejected:
		return "rejected"
	}
	return "unknown"
}

// PlatformStatus is the part of lol-status-v4 platform-data the probe reads.
type PlatformStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CheckKey probes the platform status endpoint, which costs no match-data
// quota. It makes a single attempt. A 401 or 403 is KeyRejected with a nil
// error; any other failure is KeyUnknown alongside the error.
func (c *Client) CheckKey(ctx context.Context) (KeyStatus, *PlatformStatus, error) {
	var st PlatformStatus
	err := c.doOnce(ctx, c.platformURL+"/lol/status/v4/platform-data", &st)
	switch {
	case err == nil:
		return KeyValid, &st, nil
	case errors.Is(err, ErrForbidden):
		return KeyRejected, nil, nil
	}
	return KeyUnknown, nil, err
}
