package shell

import (
	"fmt"
	"strings"
)

// PathAdvice returns guidance for adding dir to the search path of shell.
// home is used to name the rc file and to print paths as "~/...".
func PathAdvice(shell ShellType, dir, home string) string {
	shown := displayPath(dir, home)
	quoted := shown
	if strings.HasPrefix(shown, "~") {
		quoted = "$HOME" + strings.TrimPrefix(shown, "~")
	}

	var line string
	switch shell {
	case ShellFish:
		line = fmt.Sprintf("fish_add_path %s", quoted)
	default:
		line = fmt.Sprintf(`export PATH="%s:$PATH"`, quoted)
	}

	rc, err := RCFilePath(shell, home)
	if err != nil || home == "" {
		return fmt.Sprintf("%s is not on your PATH. Add it with:\n  %s", shown, line)
	}

	return fmt.Sprintf("%s is not on your PATH. Add this line to %s and restart your shell:\n  %s",
		shown, displayPath(rc, home), line)
}
