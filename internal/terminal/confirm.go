package terminal

import "github.com/charmbracelet/huh"

// Confirm renders an interactive yes/no prompt and returns the choice.
// Callers must check IsInteractive first; huh needs a TTY.
func Confirm(title string) (bool, error) {
	var accepted bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&accepted),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return accepted, nil
}
