package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abdougueye/diiokko-tv-sub000/internal/fetch"
	"github.com/abdougueye/diiokko-tv-sub000/internal/m3u"
)

// UserMessage maps a refresh failure onto the message shown to the user.
// Messages are chosen deterministically from the error category; raw errors
// never reach the UI.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		switch {
		case ferr.Class == fetch.ClassAuth:
			return "The provider rejected every request. Check the username, password and subscription expiry for this playlist."
		case ferr.Class == fetch.ClassFatal && ferr.StatusCode == 0:
			return "Could not reach the playlist server. Check the server address and your network connection."
		case ferr.StatusCode == http.StatusUnauthorized || ferr.StatusCode == http.StatusForbidden:
			return "The provider rejected every request. Check the username, password and subscription expiry for this playlist."
		case ferr.StatusCode != 0:
			return fmt.Sprintf("The playlist server kept failing (HTTP %d). Try again later.", ferr.StatusCode)
		default:
			return "Downloading the playlist failed repeatedly. Try again later."
		}
	}

	var serr *m3u.StreamError
	if errors.As(err, &serr) {
		return fmt.Sprintf("The connection dropped while reading the playlist; %d entries were read before the failure. Try again later.", serr.Entries)
	}

	return "Refreshing the playlist failed. Try again later."
}
