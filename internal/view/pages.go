package view

import (
	"time"

	"github.com/manglemix/pony-express/internal/datefmt"
	"github.com/manglemix/pony-express/internal/domain"
	"github.com/manglemix/pony-express/internal/service"
)

// Template names.
const (
	TemplateHome     = "home.html"
	TemplateLogin    = "login.html"
	TemplateRegister = "register.html"
	TemplateChats    = "chats.html"
	TemplateProfile  = "profile.html"
	TemplateNotFound = "not_found.html"
	TemplateError    = "error.html"
)

// Layout is shared by every page.
type Layout struct {
	Title    string
	Nav      []NavItem
	LoggedIn bool
}

// NewLayout builds the layout for path.
func NewLayout(title string, loggedIn bool, username, path string) Layout {
	return Layout{
		Title:    title,
		Nav:      NavItems(loggedIn, username, path),
		LoggedIn: loggedIn,
	}
}

type HomePage struct {
	Layout
}

type LoginPage struct {
	Layout
	Username FormInput
	Password FormInput
	Error    string
}

// NewLoginPage builds the login form, keeping the username on retry.
func NewLoginPage(layout Layout, username, errMsg string) LoginPage {
	return LoginPage{
		Layout:   layout,
		Username: TextInput("username", username),
		Password: PasswordInput("password"),
		Error:    errMsg,
	}
}

type RegisterPage struct {
	Layout
	Username FormInput
	Email    FormInput
	Password FormInput
	Error    string
}

// NewRegisterPage builds the registration form.
func NewRegisterPage(layout Layout, username, email, errMsg string) RegisterPage {
	emailInput := TextInput("email", email)
	emailInput.Type = "email"
	return RegisterPage{
		Layout:   layout,
		Username: TextInput("username", username),
		Email:    emailInput,
		Password: PasswordInput("password"),
		Error:    errMsg,
	}
}

type ProfilePage struct {
	Layout
	Username  string
	Email     string
	CreatedAt string
}

// NewProfilePage shows the logged-in user.
func NewProfilePage(layout Layout, u *domain.User, loc *time.Location) ProfilePage {
	p := ProfilePage{Layout: layout, Username: u.Username, Email: u.Email}
	if !u.CreatedAt.IsZero() {
		p.CreatedAt = datefmt.FormatIn(u.CreatedAt.Time, loc)
	}
	return p
}

// ChatsPage is the chat list plus, when a chat is selected, its messages.
type ChatsPage struct {
	Layout
	Chats    []service.ChatPreview
	Selected *service.ChatPreview
	Messages *MessagesView
}

// MessageRow is one rendered message.
type MessageRow struct {
	ID        int64
	Username  string
	CreatedAt string
	Text      string
	Editing   bool
	Mine      bool
	Edit      FormInput
}

// MessagesView renders a board.
type MessagesView struct {
	ChatID  int64
	Rows    []MessageRow
	Compose FormInput
}

// NewMessagesView converts b into rows with display dates in loc.
func NewMessagesView(b *service.Board, loc *time.Location) *MessagesView {
	rows := make([]MessageRow, len(b.Entries))
	for i, e := range b.Entries {
		row := MessageRow{
			ID:       e.ID,
			Username: e.User.Username,
			Text:     e.Text,
			Editing:  e.Editing,
			Mine:     e.Mine,
		}
		if !e.CreatedAt.IsZero() {
			row.CreatedAt = datefmt.FormatIn(e.CreatedAt.Time, loc)
		}
		if e.Editing {
			// Empty is allowed here: saving an empty edit deletes.
			row.Edit = FormInput{Name: "text", Type: "text", Value: e.Text}
		}
		rows[i] = row
	}

	compose := TextInput("text", b.Draft)
	compose.Class = "grow"

	return &MessagesView{
		ChatID:  b.ChatID,
		Rows:    rows,
		Compose: compose,
	}
}

type ErrorPage struct {
	Layout
}
