package jobs

import (
	"html/template"

	"github.com/shashiranjanraj/storefront/pkg/mail"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<h1>You successfully signed up!</h1><p>Welcome to the shop, {{.Email}}.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>You requested a password reset.</p>` +
			`<p>Click this <a href="{{.Link}}">link</a> to set a new password. It expires in 10 minutes.</p>`))

	orderTmpl = template.Must(template.New("order").Parse(
		`<h1>Thanks for your order</h1>` +
			`<p>Order {{.ID}}</p><ul>{{range .Lines}}<li>{{.Title}} x {{.Quantity}}</li>{{end}}</ul>` +
			`<p>Total: ${{.Total}}</p>`))
)

// Welcome is sent after signup.
func Welcome(email string) (*SendMail, error) {
	body, err := mail.Render(welcomeTmpl, struct{ Email string }{email})
	if err != nil {
		return nil, err
	}
	return &SendMail{To: []string{email}, Subject: "Signup succeeded!", HTML: body}, nil
}

// PasswordReset carries the reset link.
func PasswordReset(email, link string) (*SendMail, error) {
	body, err := mail.Render(resetTmpl, struct{ Link string }{link})
	if err != nil {
		return nil, err
	}
	return &SendMail{To: []string{email}, Subject: "Password reset", HTML: body}, nil
}

// OrderLine is one row in the confirmation mail.
type OrderLine struct {
	Title    string
	Quantity int
}

// OrderConfirmation summarises a placed order.
func OrderConfirmation(email, orderID string, lines []OrderLine, total string) (*SendMail, error) {
	body, err := mail.Render(orderTmpl, struct {
		ID    string
		Lines []OrderLine
		Total string
	}{orderID, lines, total})
	if err != nil {
		return nil, err
	}
	return &SendMail{To: []string{email}, Subject: "Order confirmation", HTML: body}, nil
}
