package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Scrumhand.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Blue-to-teal gradient
	s1 := termenv.String("  ___  ___ _ __ _   _ _ __ ___ | |__   __ _ _ __   __| |").Foreground(p.Color("#60a5fa"))
	s2 := termenv.String(" / __|/ __| '__| | | | '_ ` _ \\| '_ \\ / _` | '_ \\ / _` |").Foreground(p.Color("#38bdf8"))
	s3 := termenv.String(" \\__ \\ (__| |  | |_| | | | | | | | | | (_| | | | | (_| |").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" |___/\\___|_|   \\__,_|_| |_| |_|_| |_|\\__,_|_| |_|\\__,_|").Foreground(p.Color("#2dd4bf"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println()
}
