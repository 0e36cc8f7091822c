package query

import (
	"fmt"
	"strings"
)

// Key identifies a request, e.g. NewKey("chats", 42, "messages").
// Keys are compared part by part: ["chats", 42] is a prefix of
// ["chats", 42, "messages"] but not of ["chats", 420].
type Key []any

// NewKey builds a key from its parts.
func NewKey(parts ...any) Key {
	return Key(parts)
}

// String renders the key with a trailing separator after every part so
// that string prefixes line up with part prefixes.
func (k Key) String() string {
	var b strings.Builder
	for _, p := range k {
		b.WriteString(fmt.Sprint(p))
		b.WriteByte('/')
	}
	return b.String()
}

func scoped(scope string, key Key) string {
	return scope + "|" + key.String()
}
