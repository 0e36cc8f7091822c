// Package shell maps client paths to views, with one route table per
// authentication state.
package shell

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/middleware"
)

// State selects the route table.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// StateOf derives the state from the session.
func StateOf(sess *domain.Session) State {
	if sess.LoggedIn() {
		return Authenticated
	}
	return Unauthenticated
}

// Route names a view.
type Route string

const (
	RouteHome     Route = "home"
	RouteLogin    Route = "login"
	RouteRegister Route = "register"
	RouteChats    Route = "chats"
	RouteProfile  Route = "profile"
	RouteNotFound Route = "not_found"
	RouteError    Route = "error"
)

// ParamChatID is the path parameter of a selected chat.
const ParamChatID = "chatId"

// Decision is the outcome of resolving a path: either a view with its
// parameters or a redirect.
type Decision struct {
	Route    Route
	Params   map[string]string
	Redirect string
}

type entry struct {
	pattern string
	route   Route
}

type table struct {
	entries  []entry
	fallback string
}

var tables = map[State]table{
	Unauthenticated: {
		entries: []entry{
			{"/", RouteHome},
			{"/login", RouteLogin},
			{"/register", RouteRegister},
			{"/error", RouteError},
		},
		fallback: "/login",
	},
	Authenticated: {
		entries: []entry{
			{"/", RouteChats},
			{"/chats", RouteChats},
			{"/chats/:" + ParamChatID, RouteChats},
			{"/profile", RouteProfile},
			{"/error/404", RouteNotFound},
			{"/error", RouteError},
		},
		fallback: "/error/404",
	},
}

// Resolve picks the view for path in state, or the table's catch-all
// redirect.
func Resolve(state State, path string) Decision {
	t := tables[state]
	path = normalize(path)

	for _, e := range t.entries {
		if params, ok := match(e.pattern, path); ok {
			return Decision{Route: e.route, Params: params}
		}
	}
	return Decision{Redirect: t.fallback}
}

// Patterns lists every view pattern of both tables, once each, in gin
// syntax.
func Patterns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range []State{Unauthenticated, Authenticated} {
		for _, e := range tables[s].entries {
			if !seen[e.pattern] {
				seen[e.pattern] = true
				out = append(out, e.pattern)
			}
		}
	}
	return out
}

// RequireAuthenticated guards actions that only exist in the
// authenticated table. Other sessions are sent to the login page.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if StateOf(middleware.GetSession(c)) != Authenticated {
			c.Redirect(http.StatusSeeOther, tables[Unauthenticated].fallback)
			c.Abort()
			return
		}
		c.Next()
	}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

func match(pattern, path string) (map[string]string, bool) {
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return nil, false
	}

	var params map[string]string
	for i, p := range ps {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if xs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = xs[i]
			continue
		}
		if p != xs[i] {
			return nil, false
		}
	}
	return params, true
}
