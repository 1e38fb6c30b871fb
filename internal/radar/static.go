package radar

import "strings"

// Reason is one scoring hit, kept in first-seen order so the caller can
// quote the first reason in an error message.
type Reason struct {
	Category Category
	Points   int
	File     string
	Detail   string
}

// StaticVerdict is the outcome of scanning a bot's uploaded files.
type StaticVerdict struct {
	Score     int
	Reasons   []Reason
	Suspicious bool
}

// File is the minimal shape Scan needs from a BotFile, kept decoupled
// from the model package so this stays testable with plain literals.
type File struct {
	Filename string
	Content  string
}

// Scan runs the static pattern scan over every file's lower-cased content.
// Every independent match of a rule's pattern scores that rule's points,
// per match per file, not just the first. A file longer than 10,000 lines
// adds a flat penalty. The verdict is suspicious once the total score
// reaches 20.
func Scan(files []File) StaticVerdict {
	var v StaticVerdict
	for _, f := range files {
		lower := strings.ToLower(f.Content)
		lines := strings.Split(f.Content, "\n")

		for _, rule := range AllRules {
			for _, m := range rule.Pattern.FindAllString(lower, -1) {
				v.Score += rule.Points
				v.Reasons = append(v.Reasons, Reason{
					Category: rule.Category,
					Points:   rule.Points,
					File:     f.Filename,
					Detail:   m,
				})
			}
		}

		if len(lines) > longFileLines {
			v.Score += longFilePenalty
			v.Reasons = append(v.Reasons, Reason{
				Category: CategoryResourceExhaustion,
				Points:   longFilePenalty,
				File:     f.Filename,
				Detail:   "file exceeds 10,000 lines",
			})
		}
	}

	v.Suspicious = v.Score >= suspiciousScore
	return v
}

// FirstReason returns a human-readable quote of the first scoring hit, for
// use in the veto error message. Empty if the scan found nothing.
func (v StaticVerdict) FirstReason() string {
	if len(v.Reasons) == 0 {
		return ""
	}
	r := v.Reasons[0]
	return r.File + ": " + string(r.Category) + " (" + r.Detail + ")"
}
