package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/emilianodellacasa/colloquio/internal/profile"
)

// lastProfileFile remembers the most recent selection inside the profile
// directory, so pressing enter repeats it next time.
const lastProfileFile = ".last_profile"

// SelectProfile lists the profiles in dir and asks the respondent's operator
// to pick one. When the process has no interactive terminal the last-used
// profile (or the first available) is chosen without prompting.
func SelectProfile(dir string, in io.Reader, out io.Writer) (*profile.Profile, error) {
	return selectProfile(dir, in, out, term.IsTerminal(int(os.Stdin.Fd())))
}

func selectProfile(dir string, in io.Reader, out io.Writer, interactive bool) (*profile.Profile, error) {
	paths, err := profile.List(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no profiles found in %s", dir)
	}

	defaultIdx := 0
	if last := readLastProfile(dir); last != "" {
		for i, p := range paths {
			if filepath.Base(p) == last {
				defaultIdx = i
				break
			}
		}
	}

	idx := defaultIdx
	if interactive {
		idx, err = promptChoice(paths, defaultIdx, in, out)
		if err != nil {
			return nil, err
		}
	}

	prof, err := profile.Load(paths[idx])
	if err != nil {
		return nil, err
	}
	writeLastProfile(dir, filepath.Base(paths[idx]))
	return prof, nil
}

func promptChoice(paths []string, defaultIdx int, in io.Reader, out io.Writer) (int, error) {
	fmt.Fprintln(out, "Available profiles:")
	for i, p := range paths {
		name := filepath.Base(p)
		if prof, err := profile.Load(p); err == nil {
			name = prof.DisplayName()
		}
		marker := " "
		if i == defaultIdx {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %d) %s\n", marker, i+1, name)
	}
	fmt.Fprintf(out, "Select profile [%d]: ", defaultIdx+1)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return defaultIdx, nil
	}
	choice := strings.TrimSpace(line)
	if choice == "" {
		return defaultIdx, nil
	}
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(paths) {
		return 0, fmt.Errorf("invalid selection %q", choice)
	}
	return n - 1, nil
}

func readLastProfile(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, lastProfileFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func writeLastProfile(dir, name string) {
	// Best effort, selection still works when the directory is read-only.
	_ = os.WriteFile(filepath.Join(dir, lastProfileFile), []byte(name+"\n"), 0o644)
}
