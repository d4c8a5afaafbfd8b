//go:build !windows

package notification

import "errors"

var errNoToast = errors.New("toast notifications are Windows-only")

func showNative(string, string) error { return errNoToast }
