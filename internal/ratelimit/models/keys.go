package models

import "strings"

const ipKeyPrefix = "ratelimit:ip:"

// SanitizeKeySegment escapes ':' in key segments so an identifier cannot
// address a neighbouring bucket. IPv6 addresses are the common case here.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the bucket key for one client IP.
func IPKey(ip string) string {
	return ipKeyPrefix + SanitizeKeySegment(ip)
}
