package conf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/runctl"
)

// ErrCriticalInput is returned by PromptRunConfig when an answer cannot be
// read or is not a number where one is required.
var ErrCriticalInput = errors.NewStd("critical invalid user input")

const (
	printPrompt = "Enter the desired program print option:\n" +
		"1: Print results from producer before product is loaded into buffer.\n" +
		"2: Print results from consumer after product is consumed from buffer.\n" +
		"3: Print results from producer before product is loaded and consumer after consuming product\n" +
		"Your print option selection: "
	runPrompt = "Enter the desired program runtime option:\n" +
		"1: Run indefinitely (until cancelled with interrupt signal).\n" +
		"2: Run until character sequence \"k-1, k, k+1\" is found.\n" +
		"3: Run N times (iterations)\n" +
		"Your runtime selection: "
	countPrompt = "Enter the number of N iterations to perform:\n" +
		"Your N iterations selection: "
	stopPrompt = "Enter the single character k for its k - 1 + k + k + 1 character sequence to be halted on:\n" +
		"Your k selection: "
)

// prompter asks questions on out and reads line answers from in.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// PromptRunConfig asks for the print and run options interactively. Out of
// range answers are asked again; an unreadable or non-numeric answer fails
// with ErrCriticalInput. Capacity and CountBy take their defaults.
func PromptRunConfig(in io.Reader, out io.Writer) (RunConfig, error) {
	p := &prompter{in: bufio.NewScanner(in), out: out}
	rc := RunConfig{CountBy: runctl.CountAuto, Capacity: DefaultCapacity}

	printOpt, err := p.askInt(printPrompt,
		"Invalid option. Please enter either 1, 2, or 3.\nYour print option selection: ",
		func(n int) bool { return runctl.PrintMode(n).Valid() })
	if err != nil {
		return RunConfig{}, err
	}
	rc.Print = runctl.PrintMode(printOpt)
	fmt.Fprintf(out, "Print option %d selected.\n\n", printOpt)

	mode, err := p.askInt(runPrompt,
		"Invalid option. Please enter either 1, 2, or 3.\nYour runtime selection: ",
		func(n int) bool { return runctl.Mode(n).Valid() })
	if err != nil {
		return RunConfig{}, err
	}
	rc.Mode = runctl.Mode(mode)
	fmt.Fprintf(out, "Runtime option %d selected.\n\n", mode)

	switch rc.Mode {
	case runctl.ModeExactlyN:
		n, err := p.askInt(countPrompt,
			"Invalid option. Please enter a number of times to run that is greater than zero.\nYour N iterations selection: ",
			func(n int) bool { return n > 0 })
		if err != nil {
			return RunConfig{}, err
		}
		rc.Iterations = n
		fmt.Fprintf(out, "%d iterations selected.\n\n", n)

	case runctl.ModeUntilSequence:
		fmt.Fprint(out, stopPrompt)
		for {
			line, err := p.readLine()
			if err != nil {
				return RunConfig{}, err
			}
			target, err := alphabet.StopSequence(line)
			if err != nil {
				fmt.Fprint(out, "Invalid option. Please enter a character k that is between 'a' and 'z'.\nYour k selection: ")
				continue
			}
			rc.StopSequence = target
			fmt.Fprintf(out, "%s stop sequence selected.\n\n", target)
			break
		}
	}
	return rc, nil
}

// askInt prints question, then reads answers until accept returns true.
func (p *prompter) askInt(question, retry string, accept func(int) bool) (int, error) {
	fmt.Fprint(p.out, question)
	for {
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprint(p.out, "Critical invalid user input. Exiting program...\n")
			return 0, errors.New(ErrCriticalInput).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("input", line).
				Build()
		}
		if accept(n) {
			return n, nil
		}
		fmt.Fprint(p.out, retry)
	}
}

func (p *prompter) readLine() (string, error) {
	if p.in.Scan() {
		fmt.Fprintln(p.out)
		return p.in.Text(), nil
	}
	fmt.Fprint(p.out, "Critical invalid user input. Exiting program...\n")
	cause := p.in.Err()
	if cause == nil {
		cause = io.ErrUnexpectedEOF
	}
	return "", errors.New(errors.Join(ErrCriticalInput, cause)).
		Component("conf").
		Category(errors.CategoryConfiguration).
		Context("operation", "read_answer").
		Build()
}
