package mail

import (
	"bytes"
	"fmt"

	html "github.com/gofiber/template/html/v2"
)

// BodyRenderer produces the reset-mail body for a recipient. The reset URL
// embeds the unhashed single-use token.
type BodyRenderer interface {
	ResetBody(name, resetURL string) (string, error)
}

// PlainBody is the template-free fallback, matching the original plain-text
// recovery message.
type PlainBody struct{}

func (PlainBody) ResetBody(_, resetURL string) (string, error) {
	return fmt.Sprintf("Your password reset token is as follow\n\n%s\n\nIf you have not requested this email, then ignore it.\n", resetURL), nil
}

// TemplateBody renders reset messages from an html template directory.
type TemplateBody struct {
	engine *html.Engine
}

func NewTemplateBody(dir string) (*TemplateBody, error) {
	engine := html.New(dir, ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	return &TemplateBody{engine: engine}, nil
}

func (t *TemplateBody) ResetBody(name, resetURL string) (string, error) {
	var buf bytes.Buffer
	if err := t.engine.Render(&buf, "reset_password", map[string]any{
		"Name":     name,
		"ResetURL": resetURL,
	}); err != nil {
		return "", fmt.Errorf("render reset mail: %w", err)
	}
	return buf.String(), nil
}
