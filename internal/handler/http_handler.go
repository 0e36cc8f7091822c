package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/manglemix/pony-express/internal/client"
	"github.com/manglemix/pony-express/internal/middleware"
	"github.com/manglemix/pony-express/internal/service"
	"github.com/manglemix/pony-express/internal/session"
	"github.com/manglemix/pony-express/internal/shell"
	"github.com/manglemix/pony-express/internal/view"
	"github.com/manglemix/pony-express/pkg/log"
	"github.com/manglemix/pony-express/pkg/response"
)

const paramMessageID = "msgId"

// Handler serves the pages and form actions of the web client.
type Handler struct {
	sessions *session.Manager
	cookies  *middleware.SessionMiddleware
	users    service.UserService
	chats    service.ChatService
	messages service.MessageService
	loc      *time.Location
}

// NewHandler creates a new HTTP handler. Dates are shown in loc.
func NewHandler(
	sessions *session.Manager,
	cookies *middleware.SessionMiddleware,
	users service.UserService,
	chats service.ChatService,
	messages service.MessageService,
	loc *time.Location,
) *Handler {
	return &Handler{
		sessions: sessions,
		cookies:  cookies,
		users:    users,
		chats:    chats,
		messages: messages,
		loc:      loc,
	}
}

// RegisterRoutes registers all routes. The engine must already have the
// page templates loaded.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	pages := r.Group("/", h.cookies.LoadSession())
	{
		// Views; the shell decides what each path shows.
		for _, pattern := range shell.Patterns() {
			pages.GET(pattern, h.Page)
		}

		// Session actions
		pages.POST("/login", h.Login)
		pages.POST("/register", h.Register)
		pages.POST("/logout", h.Logout)

		// Message actions
		msgs := pages.Group("/chats/:"+shell.ParamChatID+"/messages", shell.RequireAuthenticated())
		{
			msgs.POST("", h.SendMessage)
			msgs.POST("/:"+paramMessageID, h.SubmitEdit)
			msgs.POST("/:"+paramMessageID+"/edit", h.StartEdit)
			msgs.POST("/:"+paramMessageID+"/cancel", h.CancelEdit)
			msgs.POST("/:"+paramMessageID+"/delete", h.DeleteMessage)
		}
	}

	// Catch-all
	r.NoRoute(h.cookies.LoadSession(), h.Page)
}

// Page renders the view the shell picks for the request path.
func (h *Handler) Page(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.NotFound(c, "no such action")
		return
	}

	sess := middleware.GetSession(c)
	d := shell.Resolve(shell.StateOf(sess), c.Request.URL.Path)
	if d.Redirect != "" {
		c.Redirect(http.StatusFound, d.Redirect)
		return
	}

	if sess.LoggedIn() && d.Route != shell.RouteChats {
		// Leaving the chats view unmounts the message board.
		h.messages.Unmount(c.Request.Context(), sess.ID)
	}

	switch d.Route {
	case shell.RouteHome:
		c.HTML(http.StatusOK, view.TemplateHome, view.HomePage{Layout: h.layout(c, "Pony Express")})
	case shell.RouteLogin:
		c.HTML(http.StatusOK, view.TemplateLogin, view.NewLoginPage(h.layout(c, "Login"), "", ""))
	case shell.RouteRegister:
		c.HTML(http.StatusOK, view.TemplateRegister, view.NewRegisterPage(h.layout(c, "Register"), "", "", ""))
	case shell.RouteChats:
		h.chatsPage(c, d.Params[shell.ParamChatID])
	case shell.RouteProfile:
		h.profilePage(c)
	case shell.RouteNotFound:
		c.HTML(http.StatusNotFound, view.TemplateNotFound, view.ErrorPage{Layout: h.layout(c, "Not Found")})
	default:
		c.HTML(http.StatusInternalServerError, view.TemplateError, view.ErrorPage{Layout: h.layout(c, "Error")})
	}
}

func (h *Handler) chatsPage(c *gin.Context, chatParam string) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)

	previews, err := h.chats.List(ctx, sess)
	if err != nil {
		h.fail(c, err)
		return
	}

	page := view.ChatsPage{Layout: h.layout(c, "Chats"), Chats: previews}
	if chatParam == "" {
		h.messages.Unmount(c.Request.Context(), sess.ID)
		c.HTML(http.StatusOK, view.TemplateChats, page)
		return
	}

	chatID, err := strconv.ParseInt(chatParam, 10, 64)
	if err != nil {
		c.Redirect(http.StatusFound, client.RouteErrorNotFound)
		return
	}

	selected, err := h.chats.Get(ctx, sess, chatID)
	if err != nil {
		h.fail(c, err)
		return
	}
	board, err := h.messages.Load(ctx, sess, chatID)
	if err != nil {
		h.fail(c, err)
		return
	}

	page.Title = selected.Name
	page.Selected = selected
	page.Messages = view.NewMessagesView(board, h.loc)
	c.HTML(http.StatusOK, view.TemplateChats, page)
}

func (h *Handler) profilePage(c *gin.Context) {
	sess := middleware.GetSession(c)

	user, err := h.users.Current(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, view.TemplateProfile, view.NewProfilePage(h.layout(c, "Profile"), user, h.loc))
}

// Login signs the session in and sends the browser to its chats.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	username := c.PostForm("username")

	if err := h.sessions.Login(ctx, sess, username, c.PostForm("password")); err != nil {
		switch {
		case errors.Is(err, session.ErrMissingCredentials):
			c.HTML(http.StatusBadRequest, view.TemplateLogin, view.NewLoginPage(h.layout(c, "Login"), username, err.Error()))
		case errors.Is(err, session.ErrInvalidCredentials):
			c.HTML(http.StatusUnauthorized, view.TemplateLogin, view.NewLoginPage(h.layout(c, "Login"), username, session.ErrInvalidCredentials.Error()))
		default:
			h.fail(c, err)
		}
		return
	}

	h.messages.Unmount(c.Request.Context(), sess.ID)
	h.cookies.SetCookie(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

// Register creates the account, signs the session in and sends the
// browser to its chats.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	username, email := c.PostForm("username"), c.PostForm("email")

	if err := h.sessions.Register(ctx, sess, username, email, c.PostForm("password")); err != nil {
		switch {
		case errors.Is(err, session.ErrMissingCredentials):
			c.HTML(http.StatusBadRequest, view.TemplateRegister, view.NewRegisterPage(h.layout(c, "Register"), username, email, err.Error()))
		case errors.Is(err, session.ErrRegistrationRejected):
			c.HTML(http.StatusUnprocessableEntity, view.TemplateRegister, view.NewRegisterPage(h.layout(c, "Register"), username, email, session.ErrRegistrationRejected.Error()))
		default:
			h.fail(c, err)
		}
		return
	}

	h.messages.Unmount(c.Request.Context(), sess.ID)
	h.cookies.SetCookie(c, sess)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout forgets the session.
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	sess := middleware.GetSession(c)

	if sess.LoggedIn() {
		h.messages.Unmount(c.Request.Context(), sess.ID)
		if err := h.sessions.Logout(ctx, sess); err != nil {
			l.Error().Err(err).Str(log.FieldSessionID, sess.ID).Msg("failed to log out")
		}
	}

	h.cookies.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// SendMessage posts the compose field. Empty text is ignored.
func (h *Handler) SendMessage(c *gin.Context) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}

	_, err := h.messages.Send(c.Request.Context(), middleware.GetSession(c), chatID, c.PostForm("text"))
	if err != nil && !errors.Is(err, service.ErrEmptyMessage) {
		h.fail(c, err)
		return
	}

	backToChat(c, chatID)
}

// SubmitEdit saves an edit. Empty text deletes the message.
func (h *Handler) SubmitEdit(c *gin.Context) {
	h.messageAction(c, func(chatID, msgID int64) (*service.Board, error) {
		return h.messages.SubmitEdit(c.Request.Context(), middleware.GetSession(c), chatID, msgID, c.PostForm("text"))
	})
}

// StartEdit puts a message into edit mode.
func (h *Handler) StartEdit(c *gin.Context) {
	h.messageAction(c, func(chatID, msgID int64) (*service.Board, error) {
		return h.messages.StartEdit(c.Request.Context(), middleware.GetSession(c), chatID, msgID)
	})
}

// CancelEdit leaves edit mode without saving.
func (h *Handler) CancelEdit(c *gin.Context) {
	h.messageAction(c, func(chatID, msgID int64) (*service.Board, error) {
		return h.messages.CancelEdit(c.Request.Context(), middleware.GetSession(c), chatID, msgID)
	})
}

// DeleteMessage deletes a message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	h.messageAction(c, func(chatID, msgID int64) (*service.Board, error) {
		return h.messages.Delete(c.Request.Context(), middleware.GetSession(c), chatID, msgID)
	})
}

func (h *Handler) messageAction(c *gin.Context, action func(chatID, msgID int64) (*service.Board, error)) {
	chatID, ok := h.chatID(c)
	if !ok {
		return
	}
	msgID, err := strconv.ParseInt(c.Param(paramMessageID), 10, 64)
	if err != nil {
		c.Redirect(http.StatusSeeOther, client.RouteErrorNotFound)
		return
	}

	if _, err := action(chatID, msgID); err != nil {
		h.fail(c, err)
		return
	}

	backToChat(c, chatID)
}

func (h *Handler) chatID(c *gin.Context) (int64, bool) {
	chatID, err := strconv.ParseInt(c.Param(shell.ParamChatID), 10, 64)
	if err != nil {
		c.Redirect(http.StatusSeeOther, client.RouteErrorNotFound)
		return 0, false
	}
	return chatID, true
}

// layout builds the page frame. A failed user lookup only costs the
// username in the navigation; the page itself still renders.
func (h *Handler) layout(c *gin.Context, title string) view.Layout {
	sess := middleware.GetSession(c)

	var username string
	if sess.LoggedIn() {
		user, err := h.users.Current(c.Request.Context(), sess)
		if err != nil {
			l := log.Ctx(c.Request.Context())
			l.Warn().Err(err).Msg("failed to load user for navigation")
			username = "Profile"
		} else {
			username = user.Username
		}
	}

	return view.NewLayout(title, sess.LoggedIn(), username, c.Request.URL.Path)
}

// fail sends the browser to the error route for err.
func (h *Handler) fail(c *gin.Context, err error) {
	l := log.Ctx(c.Request.Context())
	route := errorRoute(err)
	l.Warn().Err(err).Str("route", route).Msg("request failed")
	c.Redirect(http.StatusSeeOther, route)
}

func errorRoute(err error) string {
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return "/login"
	case errors.Is(err, service.ErrMessageNotFound):
		return client.RouteErrorNotFound
	default:
		return client.ErrorRoute(err)
	}
}

func backToChat(c *gin.Context, chatID int64) {
	c.Redirect(http.StatusSeeOther, "/chats/"+strconv.FormatInt(chatID, 10))
}
