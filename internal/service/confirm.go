package service

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt, for --yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

func confirmed(c Confirmer, prompt string) bool {
	return c != nil && c.Confirm(prompt)
}
