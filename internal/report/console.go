// Package report renders transfer reports for the console.
package report

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/analysis"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/runctl"
)

// Reporter receives the user-visible events of a run. Implementations are
// shared by both tasks and must be safe for concurrent use.
type Reporter interface {
	Transfer(role runctl.Role, slot int, r *analysis.Report) error
	StopSequenceFound(p alphabet.Product) error
	Quitting() error
}

// Console writes reports as plain text. Each report is written in a single
// call so the producer's and consumer's blocks never interleave.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Transfer writes the block for one transferred product. slot is 0-based
// and shown 1-based.
func (c *Console) Transfer(role runctl.Role, slot int, r *analysis.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bw := bufio.NewWriter(c.w)
	writeTransfer(bw, role.String(), slot, r)
	return c.flush(bw)
}

// Analysis writes the block for a product analyzed outside a run.
func (c *Console) Analysis(r *analysis.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bw := bufio.NewWriter(c.w)
	fmt.Fprintf(bw, "Analysis: Product: %s\n", r.Product)
	writeReport(bw, "Analysis", r)
	return c.flush(bw)
}

// StopSequenceFound announces that the stop sequence was transferred.
func (c *Console) StopSequenceFound(p alphabet.Product) error {
	return c.printf("Exiting, stop sequence found: %s\n", p)
}

// Quitting writes the final line of a successful run.
func (c *Console) Quitting() error {
	return c.printf("Program quitting...\n")
}

func (c *Console) printf(format string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	bw := bufio.NewWriter(c.w)
	_, _ = fmt.Fprintf(bw, format, args...)
	return c.flush(bw)
}

func (c *Console) flush(bw *bufio.Writer) error {
	if err := bw.Flush(); err != nil {
		return errors.New(err).
			Component("report").
			Category(errors.CategoryInternalTask).
			Context("operation", "write_report").
			Build()
	}
	return nil
}

func writeTransfer(w io.Writer, who string, slot int, r *analysis.Report) {
	fmt.Fprintf(w, "%s: Buffer contents from buffer #%d: %s\n", who, slot+1, r.Product)
	writeReport(w, who, r)
}

func writeReport(w io.Writer, who string, r *analysis.Report) {
	fmt.Fprintf(w, "%s: Number of vowels in product: %d\n", who, r.Vowels)
	fmt.Fprintf(w, "%s: Is each of the following prime?\n", who)
	for _, pc := range r.Primes {
		verdict := "No, not prime"
		if pc.Prime {
			verdict = "Yes, is prime"
		}
		fmt.Fprintf(w, "\t%s = %d: %s\n", pc.Label, pc.Value, verdict)
	}
	fmt.Fprintf(w, "%s: %d Left neighbors from product: %s\n", who, len(r.Left), r.Left)
	fmt.Fprintf(w, "%s: %d Right neighbors from product: %s\n", who, len(r.Right), r.Right)
	fmt.Fprintf(w, "%s: Number of vowels in left %d neighbors: %d\n", who, len(r.Left), r.LeftVowels)
	fmt.Fprintf(w, "%s: Number of vowels in right %d neighbors: %d\n", who, len(r.Right), r.RightVowels)
	fmt.Fprintln(w)
}
