package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LFroesch/treenav/internal/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		// Logging is best-effort; the app runs fine without it
		logger.Disable()
	}
	defer logger.Close()

	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	abs, err := filepath.Abs(root)
	if err == nil {
		abs, err = filepath.EvalSymlinks(abs)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "treenav: cannot resolve %s: %v\n", root, err)
		os.Exit(1)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "treenav: not a directory: %s\n", abs)
		os.Exit(1)
	}

	logger.Info("Session started at %s", abs)

	// The UI renders to stderr so stdout can be captured by the shell,
	// e.g. cd "$(treenav)".
	p := tea.NewProgram(
		initialModel(abs),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithOutput(os.Stderr),
	)

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "treenav: %v\n", err)
		os.Exit(1)
	}

	m, ok := final.(model)
	if !ok {
		return
	}

	m.worker.Close()
	m.st.Save()

	if m.selectedDir != "" {
		fmt.Println(m.selectedDir)
	}
}
