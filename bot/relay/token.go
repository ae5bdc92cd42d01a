// Package relay forwards user messages to the admin and routes admin replies
// back. The two directions are correlated by a textual token embedded in the
// forwarded message body, so no relay state survives a restart and none is
// needed.
package relay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnroutableReply means an admin reply could not be matched to a user:
// the replied-to message carries no token.
var ErrUnroutableReply = errors.New("relay: reply target carries no user token")

type unroutableError struct{ reason string }

func (e *unroutableError) Error() string {
	return "relay: unroutable reply: " + e.reason
}

func (e *unroutableError) Code() string { return "UNROUTABLE_REPLY" }

func (e *unroutableError) Unwrap() error { return ErrUnroutableReply }

const tokenPrefix = "(ID: "

// Token renders the correlation marker embedded in messages forwarded to the
// admin. The format is load-bearing: ParseToken depends on it exactly.
func Token(userID int64) string {
	return tokenPrefix + strconv.FormatInt(userID, 10) + ")"
}

// ParseToken extracts the user id from the first token occurrence in body.
// Only an uninterrupted digit run terminated by ')' counts; anything else
// fails so replies are never misrouted to a guessed user.
func ParseToken(body string) (int64, error) {
	i := strings.Index(body, tokenPrefix)
	if i < 0 {
		return 0, &unroutableError{reason: "token not found"}
	}
	rest := body[i+len(tokenPrefix):]
	end := strings.IndexByte(rest, ')')
	if end <= 0 {
		return 0, &unroutableError{reason: "token not terminated"}
	}
	digits := rest[:end]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, &unroutableError{reason: "token is not numeric"}
		}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &unroutableError{reason: "token out of range"}
	}
	return id, nil
}

// userLabel renders the display name plus token for admin-facing bodies.
// The name is neutralized first: ParseToken reads the first prefix occurrence
// in the whole body, so a crafted first name must never contain one.
func userLabel(firstName string, userID int64) string {
	name := strings.TrimSpace(strings.ReplaceAll(firstName, tokenPrefix, "(ID:"))
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("%s %s", name, Token(userID))
}
