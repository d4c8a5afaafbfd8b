//go:build windows

package notification

import (
	"github.com/go-toast/toast"
	"github.com/rs/zerolog/log"
)

func showNative(title, message string) error {
	go func() {
		n := toast.Notification{
			AppID:   appID,
			Title:   title,
			Message: message,
		}
		if err := n.Push(); err != nil {
			log.Warn().Err(err).Msg("Failed to show notification")
		}
	}()
	return nil
}
