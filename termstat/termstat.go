// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package termstat provides an iteration progress meter which overwrites a
// single terminal line as a long-running batch job advances. It is meant
// for interactive use in lieu of an actual metrics collector writing to an
// external tool.
package termstat

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Progress meters the iterations of one labelled loop. It refreshes its
// output line every UpdateEvery iterations, so the cost of Update stays
// negligible next to the work being metered. Not threadsafe.
type Progress struct {
	// UpdateEvery is how many iterations pass between refreshes.
	UpdateEvery uint64

	label      string
	out        io.Writer
	iterations uint64
	start      time.Time
}

// NewProgress returns a Progress writing to out under the given label.
func NewProgress(out io.Writer, label string) *Progress {
	return &Progress{UpdateEvery: 1000, label: label, out: out}
}

// Start begins timing and prints the initial line.
func (p *Progress) Start() {
	p.start = time.Now()
	p.print()
}

// Update records one iteration, refreshing the output line when due.
func (p *Progress) Update() {
	p.iterations++
	if p.iterations%p.UpdateEvery == 0 {
		p.print()
	}
}

// Done prints the total elapsed time and moves off the refresh line.
func (p *Progress) Done() {
	fmt.Fprintf(p.out, "%s took %s%s\n", p.label, formatMillis(time.Since(p.start)), strings.Repeat(" ", 20))
}

func (p *Progress) print() {
	elapsed := time.Since(p.start).Milliseconds()
	var perSecond uint64
	if elapsed > 0 {
		perSecond = uint64(1000 * float64(p.iterations) / float64(elapsed))
	}
	fmt.Fprintf(p.out, "| %s: %d it %d it/s |%s\r", p.label, p.iterations, perSecond, strings.Repeat(" ", 20))
}

func formatMillis(d time.Duration) string {
	milliseconds := d.Milliseconds()
	hours := milliseconds / (1000 * 60 * 60)
	milliseconds %= 1000 * 60 * 60
	minutes := milliseconds / (1000 * 60)
	milliseconds %= 1000 * 60
	seconds := milliseconds / 1000
	milliseconds %= 1000
	return fmt.Sprintf("%02d:%02d:%02d:%03d", hours, minutes, seconds, milliseconds)
}
