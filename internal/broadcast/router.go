package broadcast

import (
	"strings"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

// ChannelCallConsole is the shared operational dashboard channel.
const ChannelCallConsole = "call-console"

const userChannelPrefix = "user."

// UserChannel names the private per-user channel for an identity.
func UserChannel(id string) string { return userChannelPrefix + id }

// UserChannelID extracts the identity a private channel belongs to.
func UserChannelID(channel string) (string, bool) {
	if !strings.HasPrefix(channel, userChannelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, userChannelPrefix)
	return id, id != ""
}

// Target is one delivery destination resolved for an event.
type Target struct {
	Channel           string
	ExcludeOriginator bool
}

// Route maps an event to its delivery targets. Pure: the same event
// always routes identically, whether or not the channels have members.
//
// Call updates go to the shared console including the actor that caused
// them. Extension updates additionally go to that agent's private
// channel, skipping the originating connection there so an agent's own
// status toggle does not echo back to them.
func Route(ev *event.Event) []Target {
	switch ev.Kind() {
	case event.KindCallUpdated:
		return []Target{{Channel: ChannelCallConsole}}
	case event.KindExtensionStatusUpdated:
		targets := []Target{{Channel: ChannelCallConsole}}
		if ext, ok := ev.Extension(); ok && ext.Extension != "" {
			targets = append(targets, Target{Channel: UserChannel(ext.Extension), ExcludeOriginator: true})
		}
		return targets
	case event.KindCustomerNotification:
		if n, ok := ev.Notification(); ok {
			return []Target{{Channel: UserChannel(n.UserID)}}
		}
	}
	return nil
}
