package resourcekey

import (
	"fmt"
	"net/http"
	"path"
	"strings"
)

var ErrorKeyNotInNamespace = fmt.Errorf("Key not in namespace")

const namespaceSeparator = ":"

type Keyer struct {
	// Identifier for the set of resources.
	// Several servers may share a store by using different namespaces.
	Namespace string
	// Key prefix for this namespace
	Prefix string
}

func NewKeyer(namespace string) Keyer {
	return Keyer{
		Namespace: namespace,
		Prefix:    namespace + namespaceSeparator,
	}
}

// Key returns the store key for the resource addressed by the request.
// Query strings do not take part in the key: a resource is identified by its path only.
func (k Keyer) Key(r *http.Request) string {
	return k.KeyForPath(r.URL.Path)
}

// KeyForPath returns the store key for the resource at the given path.
// The path is cleaned, so "/a/../b" and "/b" have the same key.
func (k Keyer) KeyForPath(p string) string {
	return k.Prefix + cleanPath(p)
}

// PathFromKey returns the path of the resource stored under key.
// It returns an error if the key belongs to another namespace.
func (k Keyer) PathFromKey(key string) (string, error) {
	if !strings.HasPrefix(key, k.Prefix) {
		return "", ErrorKeyNotInNamespace
	}
	p := strings.TrimPrefix(key, k.Prefix)
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("Malformed key: %s", key)
	}
	return p, nil
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}
