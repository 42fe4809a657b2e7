package reporter

import (
	"fmt"
	"strings"
)

// Greeting is posted when processing starts.
func Greeting() string {
	return "Greetings! I'm the coafile bot and I'm here to get your coafile ready. Sit tight!"
}

// Preview wraps the generated artifact in a code fence.
func Preview(content string) string {
	return "```\n" + strings.TrimRight(content, "\n") + "\n```"
}

// Success announces an opened pull request and the follow-up steps.
func Success(prURL string) string {
	var b strings.Builder
	b.WriteString("coafile creation process successful! :tada: :tada: :tada:\n\n")
	b.WriteString("Next steps:\n\n")
	fmt.Fprintf(&b, "1. Merge the pull request %s containing the .coafile.\n", prURL)
	b.WriteString("2. Turn on GitMate integration on this repository.\n")
	b.WriteString("3. Turn on code analysis for automated code reviews on your PRs.\n\n")
	b.WriteString("Happy linting! :tada:")
	return b.String()
}

// AlreadyExists is posted when the coafile pull request is already open.
func AlreadyExists() string {
	return "Oops! Looks like I've already made a coafile PR for this repository!"
}

// Retrying is posted before a publish retry.
func Retrying(attempt, maxRetries int) string {
	return fmt.Sprintf("Oops! Looks like there was some problem making the coafile PR! Retrying... (%d/%d)", attempt, maxRetries)
}

// Exhausted is posted when every publish attempt failed.
func Exhausted(attempts int) string {
	return fmt.Sprintf("Sorry! coafile-bot is unable to make the PR after %d attempts.", attempts)
}

// WorkspaceFailed is posted when the coafile could not be generated.
func WorkspaceFailed(err error) string {
	return fmt.Sprintf("Sorry! coafile-bot could not generate a coafile for this repository.\n\n```\n%v\n```", err)
}
