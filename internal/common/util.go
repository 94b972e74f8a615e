package common

import "regexp"

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func MapKeys[K comparable, V any](m map[K]V) []K {
	var result []K
	for k := range m {
		result = append(result, k)
	}
	return result
}

func IsValidUsername(username string) bool {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return false
	}

	return usernameRegex.MatchString(username)
}
