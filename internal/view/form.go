// Package view holds the models the HTML templates render.
package view

// FormInput is a text input whose value round-trips through the server.
// Rendered by the "form_input" template.
type FormInput struct {
	Name        string
	Type        string
	Value       string
	Placeholder string
	Class       string
	Required    bool
}

// TextInput is a required text input.
func TextInput(name, value string) FormInput {
	return FormInput{Name: name, Type: "text", Value: value, Required: true}
}

// PasswordInput never echoes its value back.
func PasswordInput(name string) FormInput {
	return FormInput{Name: name, Type: "password", Required: true}
}
