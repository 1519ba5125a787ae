package service

import (
	"math"
	"reflect"
	"strings"
	"time"
)

// UnknownSourceKey is used when no forwarded address header is present.
const UnknownSourceKey = "unknown"

// MaxSourceKeyLength matches the archive column width.
const MaxSourceKeyLength = 64

// SourceKey derives the cooldown key from forwarded address headers.
// The first X-Forwarded-For entry wins, then X-Real-IP, then UnknownSourceKey.
func SourceKey(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.SplitN(forwardedFor, ",", 2)[0])
		if first != "" {
			return clampSourceKey(first)
		}
	}
	if ip := strings.TrimSpace(realIP); ip != "" {
		return clampSourceKey(ip)
	}
	return UnknownSourceKey
}

func clampSourceKey(key string) string {
	if len(key) > MaxSourceKeyLength {
		return key[:MaxSourceKeyLength]
	}
	return key
}

// remainingSeconds rounds the rest of the cooldown window up to whole seconds.
func remainingSeconds(cooldown, elapsed time.Duration) int {
	left := cooldown - elapsed
	if left > cooldown {
		left = cooldown
	}
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "***"
	}
	local := parts[0]
	domain := parts[1]
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}

func maskPhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
