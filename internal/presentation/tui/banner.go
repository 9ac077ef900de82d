package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the Colloquio ASCII banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Warm gradient, easier on the eye for a conversational tool.
	s1 := termenv.String("   ____      _ _                  _       ").Foreground(p.Color("#fbbf24"))
	s2 := termenv.String("  / ___|___ | | | ___   __ _ _   _(_) ___  ").Foreground(p.Color("#fb923c"))
	s3 := termenv.String(" | |   / _ \\| | |/ _ \\ / _` | | | | |/ _ \\ ").Foreground(p.Color("#f97316"))
	s4 := termenv.String(" | |__| (_) | | | (_) | (_| | |_| | | (_) |").Foreground(p.Color("#ea580c"))
	s5 := termenv.String("  \\____\\___/|_|_|\\___/ \\__, |\\__,_|_|\\___/ ").Foreground(p.Color("#dc2626"))
	s6 := termenv.String("                          |_|              ").Foreground(p.Color("#b91c1c"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
