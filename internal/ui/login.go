package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/stash/internal/nas"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// loginForm holds the login and signup prompts. Email is only shown when
// signing up.
type loginForm struct {
	inputs  [3]textinput.Model
	focus   int
	signup  bool
	pending bool
}

func newLoginForm(lastUsername string) loginForm {
	var f loginForm
	f.inputs[fieldUsername] = newPrompt("username", 64)
	f.inputs[fieldUsername].SetValue(lastUsername)
	f.inputs[fieldEmail] = newPrompt("email", 128)
	f.inputs[fieldPassword] = newPrompt("password", 128)
	f.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	f.inputs[fieldPassword].EchoCharacter = '•'
	if lastUsername != "" {
		f.setFocus(fieldPassword)
	} else {
		f.setFocus(fieldUsername)
	}
	return f
}

// order lists the visible fields top to bottom.
func (f loginForm) order() []int {
	if f.signup {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (f *loginForm) setFocus(field int) {
	f.focus = field
	for i := range f.inputs {
		if i == field {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *loginForm) focusFirst() {
	f.pending = false
	f.inputs[fieldPassword].Reset()
	if f.inputs[fieldUsername].Value() != "" {
		f.setFocus(fieldPassword)
		return
	}
	f.setFocus(fieldUsername)
}

func (f *loginForm) focusNext(reverse bool) {
	order := f.order()
	pos := 0
	for i, field := range order {
		if field == f.focus {
			pos = i
		}
	}
	if reverse {
		pos = (pos - 1 + len(order)) % len(order)
	} else {
		pos = (pos + 1) % len(order)
	}
	f.setFocus(order[pos])
}

func (f *loginForm) toggleSignup() {
	f.signup = !f.signup
	if !f.signup && f.focus == fieldEmail {
		f.setFocus(fieldUsername)
	}
}

func (f loginForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// handleLoginKey processes keyboard input for the login form.
func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.login.pending {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.login.focusNext(msg.String() == "shift+tab")
		return m, nil
	case key.Matches(msg, m.keys.ToggleSignup):
		m.login.toggleSignup()
		m.clearStatus()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitLogin()
	case msg.String() == "esc":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := m.login.value(fieldUsername)
	password := m.login.inputs[fieldPassword].Value()
	if username == "" || password == "" {
		m.setError("username and password are required")
		return m, nil
	}

	m.login.pending = true
	if m.login.signup {
		email := m.login.value(fieldEmail)
		if email == "" {
			m.login.pending = false
			m.setError("email is required to sign up")
			return m, nil
		}
		m.setStatus("creating account...")
		return m, m.signupCmd(nas.Signup{Username: username, Email: email, Password: password})
	}
	m.setStatus("logging in...")
	return m, m.loginCmd(nas.Credentials{Username: username, Password: password})
}

// handleLogin applies a login or signup outcome.
func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.pending = false
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, nas.ErrUnauthorized):
			m.setError("invalid username or password")
		case nas.IsStatus(msg.err, http.StatusConflict):
			m.setError("username already taken")
		case msg.signup:
			m.setError("failed to sign up, try again")
		default:
			m.setError("failed to log in, try again")
		}
		m.login.inputs[fieldPassword].Reset()
		m.login.setFocus(fieldPassword)
		return m, nil
	}

	m.clearStatus()
	m.login.inputs[fieldPassword].Reset()
	m.login.signup = false
	if m.prefs.LastUsername != msg.username {
		m.prefs.LastUsername = msg.username
		m.savePrefs()
	}
	return m, fetchSnapshotCmd(m.store)
}

// renderLogin renders the centered login form.
func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	title := "Log in to stash"
	if m.login.signup {
		title = "Create a stash account"
	}
	b.WriteString(styles.Logo.Render(title))
	b.WriteString("\n")
	if m.server != "" {
		b.WriteString(styles.FaintText.Render(truncateMiddle(m.server, 40)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	labels := map[int]string{fieldUsername: "Username", fieldEmail: "Email", fieldPassword: "Password"}
	for _, field := range m.login.order() {
		label := styles.MutedText
		if field == m.login.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Render(padRight(labels[field], 10)))
		b.WriteString(m.login.inputs[field].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(styles.DangerText.Render(m.status))
		} else {
			b.WriteString(styles.MutedText.Render(m.status))
		}
		b.WriteString("\n")
	}
	mode := "ctrl+n sign up"
	if m.login.signup {
		mode = "ctrl+n log in"
	}
	b.WriteString(styles.FaintText.Render("enter submit · tab next field · " + mode + " · esc quit"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(56)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
