package progress

import (
	"fmt"
	"io"
	"time"
)

// Reader wraps an io.Reader and periodically writes a one-line progress
// update to out. Rendering is display-only; read results pass through
// untouched.
type Reader struct {
	r           io.Reader
	out         io.Writer
	label       string
	total       int64
	read        int64
	lastPrinted time.Time
}

// NewReader creates a progress Reader. If total is 0 the percentage is
// omitted.
func NewReader(r io.Reader, total int64, label string, out io.Writer) *Reader {
	return &Reader{r: r, out: out, label: label, total: total}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if now := time.Now(); now.Sub(p.lastPrinted) >= 200*time.Millisecond {
			p.print()
			p.lastPrinted = now
		}
	}
	if err == io.EOF && p.out != nil {
		p.print()
		fmt.Fprint(p.out, "\n")
	}
	return n, err
}

func (p *Reader) print() {
	if p.out == nil {
		return
	}
	if p.total > 0 {
		pct := float64(p.read) / float64(p.total) * 100
		fmt.Fprintf(p.out, "\r[%s] %.1f%% %s/%s", p.label, pct, HumanBytes(p.read), HumanBytes(p.total))
	} else {
		fmt.Fprintf(p.out, "\r[%s] %s", p.label, HumanBytes(p.read))
	}
}

// HumanBytes renders a byte count with a binary-unit suffix.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTP"[exp])
}
