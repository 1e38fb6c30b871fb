package supervisor

import "testing"

func TestIsReadyLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"2026-07-30 Logged in as MyBot#1234", true},
		{"Bot is ready to serve commands", true},
		{"Successfully logged in to the gateway", true},
		{"just a normal line", false},
	}
	for _, c := range cases {
		if got := isReadyLine(c.line); got != c.want {
			t.Errorf("isReadyLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestIsFatalTokenLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"discord.errors.LoginFailure: Improper token has been passed", true},
		{"Error: Unauthorized", true},
		{"Invalid token provided", true},
		{"connecting to gateway...", false},
	}
	for _, c := range cases {
		if got := isFatalTokenLine(c.line); got != c.want {
			t.Errorf("isFatalTokenLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}
