package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/foalwatch/internal/services"
)

const maxTrackedLoginKeys = 4096

// loginThrottle counts failed sign-ins inside a sliding window under two
// keys: the client address, and the address paired with the account email.
// The pair has the lower limit, so guessing at one account locks it before
// the whole address is blocked.
type loginThrottle struct {
	mu           sync.Mutex
	window       time.Duration
	addressLimit int
	accountLimit int
	failures     map[string][]time.Time
}

type loginAttemptKeys struct {
	address string
	account string
}

func newLoginThrottle(addressLimit int, accountLimit int, window time.Duration) *loginThrottle {
	return &loginThrottle{
		window:       window,
		addressLimit: addressLimit,
		accountLimit: accountLimit,
		failures:     make(map[string][]time.Time),
	}
}

func loginKeysFor(c *fiber.Ctx, rawEmail string) loginAttemptKeys {
	address := strings.TrimSpace(c.IP())
	if address == "" {
		address = "unknown"
	}
	email, err := services.NormalizeEmail(rawEmail)
	if err != nil {
		email = strings.ToLower(strings.TrimSpace(rawEmail))
	}
	return loginAttemptKeys{address: address, account: address + "|" + email}
}

func (throttle *loginThrottle) blocked(keys loginAttemptKeys, now time.Time) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	return len(throttle.recentLocked(keys.address, now)) >= throttle.addressLimit ||
		len(throttle.recentLocked(keys.account, now)) >= throttle.accountLimit
}

func (throttle *loginThrottle) recordFailure(keys loginAttemptKeys, now time.Time) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	if len(throttle.failures) >= maxTrackedLoginKeys {
		for key := range throttle.failures {
			throttle.recentLocked(key, now)
		}
	}
	for _, key := range []string{keys.address, keys.account} {
		throttle.failures[key] = append(throttle.recentLocked(key, now), now)
	}
}

// forget clears the account pair after a successful sign-in. The address
// counter keeps running, so signing in to one account does not reset
// guessing against others.
func (throttle *loginThrottle) forget(keys loginAttemptKeys) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	delete(throttle.failures, keys.account)
}

func (throttle *loginThrottle) recentLocked(key string, now time.Time) []time.Time {
	threshold := now.Add(-throttle.window)
	kept := throttle.failures[key][:0]
	for _, failedAt := range throttle.failures[key] {
		if failedAt.After(threshold) {
			kept = append(kept, failedAt)
		}
	}
	if len(kept) == 0 {
		delete(throttle.failures, key)
		return nil
	}
	throttle.failures[key] = kept
	return kept
}
