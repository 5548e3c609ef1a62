//go:build !unix

package limits

import "errors"

func setNiceness(int) error {
	return errors.New("niceness not supported on this platform")
}
