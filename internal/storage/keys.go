package storage

import (
	"fmt"
	"path"
	"strings"
)

// cleanKey normalises an object key and refuses keys that escape the store.
func cleanKey(name string) (string, error) {
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return "", fmt.Errorf("key %q escapes the store", name)
		}
	}
	key := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(name)), "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

func publicLocation(baseURL, key string) string {
	if baseURL == "" {
		return key
	}
	return baseURL + "/" + key
}

func keyFromLocation(baseURL, location string) string {
	if baseURL != "" {
		if rest, ok := strings.CutPrefix(location, baseURL+"/"); ok {
			return rest
		}
	}
	return location
}
