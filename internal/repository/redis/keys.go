package redis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const ns = "dakshina:v1"

// KeyDistance is the same for both orders of a city pair.
func KeyDistance(a, b string) string {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s:distance:%s:%s", ns, a, b)
}

func KeyBooking(id uuid.UUID) string {
	return fmt.Sprintf("%s:booking:%s", ns, id)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookingsChanged() string {
	return ns + ":bookings:changed"
}
