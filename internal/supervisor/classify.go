package supervisor

import "strings"

// readyMarkers, seen in a stdout line, transition a starting bot to
// running.
var readyMarkers = []string{"Logged in as", "Bot is ready", "Successfully logged in"}

// fatalTokenMarkers, seen in a stderr line, transition a bot straight to
// error regardless of exit code.
var fatalTokenMarkers = []string{"LoginFailure", "Improper token", "Unauthorized", "Invalid token"}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

func isReadyLine(line string) bool { return containsAny(line, readyMarkers) }

func isFatalTokenLine(line string) bool { return containsAny(line, fatalTokenMarkers) }
