package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// readPassword запрашивает пароль без эха. Подменяется в тестах.
var readPassword = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot read password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// passwordArg пароль из аргумента i или с терминала.
func passwordArg(args []string, i int, prompt string) (string, error) {
	if len(args) > i && args[i] != "" {
		return args[i], nil
	}
	return readPassword(prompt)
}

// withSpinner показывает спиннер на stderr, пока работает fn (генерация ключей, KDF).
func withSpinner(msg string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + msg
	_ = s.Color("cyan")
	s.Start()
	err := fn()
	s.Stop()
	return err
}

func success(format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func warn(format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", color.YellowString("!"), fmt.Sprintf(format, a...))
}

func hint(format string, a ...any) {
	fmt.Fprintf(Out, "%s %s\n", color.CyanString("→"), fmt.Sprintf(format, a...))
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}
