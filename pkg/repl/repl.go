package repl

// note: based off of csci1270-fall23
import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// ErrQuit is returned by a handler to leave the loop.
var ErrQuit = errors.New("quit")

type REPL struct {
	Commands map[string]func(string, *REPLConfig) error
	Help     map[string]string

	// AfterCommand, if set, sees every non-blank line and its result
	AfterCommand func(input string, err error)
}

type REPLConfig struct {
	Writer io.Writer
}

// RunConfig controls the terminal side of Run.
type RunConfig struct {
	Prompt      string
	HistoryFile string

	// Stdin and Stdout default to the process terminal
	Stdin  io.ReadCloser
	Stdout io.Writer
}

func NewRepl() *REPL {
	r := &REPL{
		Commands: make(map[string]func(string, *REPLConfig) error),
		Help:     make(map[string]string),
	}
	r.AddCommand("help", func(_ string, config *REPLConfig) error {
		_, err := io.WriteString(config.Writer, r.HelpString())
		return err
	}, "Prints this message. usage: help")
	r.AddCommand("exit", quitHandler, "Leaves the console. usage: exit")
	r.AddCommand("quit", quitHandler, "Leaves the console. usage: quit")
	return r
}

// Add a command, along with its help string, to the set of commands
func (r *REPL) AddCommand(trigger string, handler func(string, *REPLConfig) error, help string) {
	if trigger == "" || trigger[0] == '.' {
		return
	}
	r.Help[trigger] = help
	r.Commands[trigger] = handler
}

// Return all REPL usage information as a string, sorted by command
func (r *REPL) HelpString() string {
	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, k := range r.triggers() {
		sb.WriteString(fmt.Sprintf("\t%s: %s\n", k, r.Help[k]))
	}
	return sb.String()
}

// Execute runs a single input line. Blank lines are ignored.
func (r *REPL) Execute(input string, config *REPLConfig) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	var err error
	command := strings.Fields(input)[0]
	if handler, ok := r.Commands[command]; ok {
		err = handler(input, config)
	} else {
		err = errors.Errorf("Invalid command: %s", command)
	}
	if r.AfterCommand != nil {
		r.AfterCommand(input, err)
	}
	return err
}

// Run reads lines with readline until EOF, exit or quit. Ctrl-C drops the
// current line.
func (r *REPL) Run(rc RunConfig) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(r.Commands))
	for _, k := range r.triggers() {
		items = append(items, readline.PcItem(k))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          rc.Prompt,
		HistoryFile:     rc.HistoryFile,
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           rc.Stdin,
		Stdout:          rc.Stdout,
	})
	if err != nil {
		return errors.Wrap(err, "cannot start readline")
	}
	defer rl.Close()

	replConfig := &REPLConfig{Writer: rl.Stdout()}

	// begin the repl
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "readline")
		}

		err = r.Execute(line, replConfig)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			io.WriteString(replConfig.Writer, fmt.Sprintf("Error: %v\n", err))
			if _, ok := r.Commands[strings.Fields(line)[0]]; !ok {
				io.WriteString(replConfig.Writer, r.HelpString())
			}
		}
	}
}

func quitHandler(string, *REPLConfig) error {
	return ErrQuit
}

func (r *REPL) triggers() []string {
	keys := make([]string, 0, len(r.Commands))
	for k := range r.Commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
