package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"wordplay/internal/models"
	"wordplay/internal/profile"
	"wordplay/internal/quiz"
	"wordplay/internal/service"
	"wordplay/internal/utils"
	"wordplay/internal/vocab"
)

const (
	replayCommand = ":replay"
	quitCommand   = ":quit"
)

// app is the line-oriented front end over a QuizController
type app struct {
	ctl          *service.QuizController
	in           *bufio.Scanner
	out          io.Writer
	defaultCount int
	countOptions []int
	readFile     func(string) ([]byte, error)
}

func newApp(ctl *service.QuizController, in io.Reader, out io.Writer, defaultCount int, countOptions []int) *app {
	return &app{
		ctl:          ctl,
		in:           bufio.NewScanner(in),
		out:          out,
		defaultCount: defaultCount,
		countOptions: countOptions,
		readFile:     os.ReadFile,
	}
}

// run reads lines until quit or end of input
func (a *app) run() error {
	a.printf("Wordplay vocabulary quiz. Type 'help' for commands.\n")
	a.prompt()

	for a.in.Scan() {
		line := strings.TrimSpace(a.in.Text())

		var quit bool
		switch a.ctl.State() {
		case quiz.StateInProgress:
			a.handleAnswer(line)
		case quiz.StateCompleted:
			a.handleRestart()
		default:
			quit = a.handleCommand(line)
		}
		if quit {
			return nil
		}
		a.prompt()
	}

	return a.in.Err()
}

func (a *app) prompt() {
	switch a.ctl.State() {
	case quiz.StateInProgress:
		session := a.ctl.Session()
		word, err := a.ctl.CurrentWord()
		if err != nil || session == nil {
			return
		}
		n, total := session.Progress()
		a.printf("\nQuestion %d/%d: %s\n> ", n, total, word.SourceTerm)
	case quiz.StateCompleted:
		a.printf("Press Enter to start over.\n")
	default:
		if user, ok := a.ctl.SelectedUser(); ok {
			a.printf("[%s] ", user.Name)
		}
		a.printf("wordplay> ")
	}
}

func (a *app) handleCommand(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "help":
		a.printHelp()
	case "users":
		a.listUsers()
	case "add":
		user, err := a.ctl.AddUser(arg)
		if err != nil {
			a.reportError(err)
			return false
		}
		a.printf("Added and selected %s.\n", user.Name)
	case "select":
		user, ok := a.userAt(arg)
		if !ok {
			return false
		}
		if err := a.ctl.SelectUser(user.ID); err != nil {
			a.reportError(err)
			return false
		}
		a.printf("Selected %s (%d words).\n", user.Name, len(user.Words))
	case "delete":
		a.deleteUser(arg)
	case "upload":
		a.upload(arg)
	case "start":
		a.start(arg)
	case "history":
		a.history()
	case "quit", "exit":
		a.printf("Bye.\n")
		return true
	default:
		a.printf("Unknown command %q. Type 'help' for commands.\n", cmd)
	}
	return false
}

func (a *app) printHelp() {
	options := make([]string, len(a.countOptions))
	for i, n := range a.countOptions {
		options[i] = strconv.Itoa(n)
	}

	a.printf("Commands:\n")
	a.printf("  users            list users\n")
	a.printf("  add <name>       add a user and select it\n")
	a.printf("  select <n>       select user number n\n")
	a.printf("  delete <n>       delete user number n with all their data\n")
	a.printf("  upload <file>    load a vocabulary file (one \"source,target\" pair per line)\n")
	a.printf("  start [count]    start a quiz (default %d, suggested: %s)\n", a.defaultCount, strings.Join(options, ", "))
	a.printf("  history          show quiz results for the selected user\n")
	a.printf("  quit             exit\n")
	a.printf("During a quiz type the answer, %s to hear the word again or %s to stop.\n", replayCommand, quitCommand)
}

func (a *app) listUsers() {
	users := a.ctl.Users()
	if len(users) == 0 {
		a.printf("No users yet. Add one with 'add <name>'.\n")
		return
	}

	selected, _ := a.ctl.SelectedUser()
	for i, u := range users {
		marker := " "
		if u.ID == selected.ID {
			marker = "*"
		}
		a.printf("%s %d. %s (%d words, %d quizzes)\n", marker, i+1, u.Name, len(u.Words), len(u.History))
	}
}

func (a *app) userAt(arg string) (models.UserProfile, bool) {
	users := a.ctl.Users()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(users) {
		a.printf("Please give a user number between 1 and %d.\n", len(users))
		return models.UserProfile{}, false
	}
	return users[n-1], true
}

func (a *app) deleteUser(arg string) {
	user, ok := a.userAt(arg)
	if !ok {
		return
	}

	a.printf("Delete %s with all their words and history? [y/N] ", user.Name)
	if !a.in.Scan() || !strings.EqualFold(strings.TrimSpace(a.in.Text()), "y") {
		a.printf("Cancelled.\n")
		return
	}

	if err := a.ctl.DeleteUser(user.ID); err != nil {
		a.reportError(err)
		return
	}
	a.printf("Deleted %s.\n", user.Name)
}

func (a *app) upload(path string) {
	if path == "" {
		a.printf("Usage: upload <file>\n")
		return
	}

	data, err := a.readFile(path)
	if err != nil {
		a.printf("Could not read %s: %v\n", path, err)
		return
	}

	words, err := a.ctl.UploadVocabulary(filepath.Base(path), string(data))
	if err != nil {
		a.reportError(err)
		return
	}
	a.printf("Loaded %d words from %s.\n", len(words), filepath.Base(path))
}

func (a *app) start(arg string) {
	count := a.defaultCount
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			a.printf("Question count must be a number.\n")
			return
		}
		count = n
	}

	if err := a.ctl.StartQuiz(count); err != nil {
		a.reportError(err)
		return
	}
	a.printf("Translate each word. %s replays the pronunciation, %s stops.\n", replayCommand, quitCommand)
}

func (a *app) handleAnswer(line string) {
	switch line {
	case replayCommand:
		if err := a.ctl.ReplayPronunciation(); err != nil {
			a.reportError(err)
		}
		return
	case quitCommand:
		if _, err := a.ctl.Restart(); err != nil {
			a.reportError(err)
		}
		a.printf("Quiz stopped.\n")
		return
	}

	word, err := a.ctl.CurrentWord()
	if err != nil {
		a.reportError(err)
		return
	}

	record, complete, err := a.ctl.SubmitAnswer(line)
	if err != nil {
		a.reportError(err)
		return
	}

	if record.IsCorrect {
		a.printf("Correct!\n")
	} else {
		a.printf("Incorrect. The answer is %q.\n", word.TargetTerm)
	}

	if complete {
		a.printResults()
	}
}

func (a *app) printResults() {
	session := a.ctl.Session()
	if session == nil {
		return
	}
	score := session.Score()

	a.printf("\nQuiz complete! You got %d out of %d correct (%d%%).\n\n", score.Correct, score.Total, score.Percentage)

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tWord\tCorrect answer\tYour answer\t")
	for _, item := range session.Review() {
		mark := "✓"
		if !item.IsCorrect {
			mark = "✗"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s %s\t\n", item.Number, item.SourceTerm, item.TargetTerm, item.SubmittedText, mark)
	}
	tw.Flush()
	a.printf("\n")
}

func (a *app) handleRestart() {
	result, err := a.ctl.Restart()
	if err != nil {
		a.reportError(err)
	}
	if result != nil {
		a.printf("Result saved: %d%%.\n", result.Score.Percentage)
	}
}

func (a *app) history() {
	user, ok := a.ctl.SelectedUser()
	if !ok {
		a.reportError(utils.ErrNoUserSelected)
		return
	}

	results, err := a.ctl.History(user.ID)
	if err != nil {
		a.reportError(err)
		return
	}
	if len(results) == 0 {
		a.printf("%s has no quiz results yet.\n", user.Name)
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tScore\tFile\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d/%d (%d%%)\t%s\t\n",
			formatTimestamp(r.Timestamp), r.Score.Correct, r.Score.Total, r.Score.Percentage, r.SourceFileName)
	}
	tw.Flush()
}

// reportError turns typed errors into messages for the user
func (a *app) reportError(err error) {
	var (
		validationErr utils.ValidationError
		parseErr      *vocab.ParseError
		stateErr      *quiz.StateError
		storageErr    *profile.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		a.printf("%s\n", capitalize(validationErr.Message))
	case errors.As(err, &parseErr):
		a.printf("No valid words found in the file. Use one \"source,target\" pair per line.\n")
	case errors.As(err, &stateErr):
		a.printf("That is not possible right now (%s).\n", stateErr.Actual)
	case errors.As(err, &storageErr):
		a.printf("Could not save your data: %v\n", storageErr.Err)
	case errors.Is(err, profile.ErrUserNotFound):
		a.printf("That user no longer exists.\n")
	default:
		a.printf("Error: %v\n", err)
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
