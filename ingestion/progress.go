// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressTracker prints a single updating status line while a run walks
// the collected files.
type ProgressTracker struct {
	mu           sync.Mutex
	w            io.Writer
	total        int
	done         int
	failed       int
	every        int
	lastReported int
	start        time.Time
	started      bool
}

// NewProgressTracker reports to w every `every` files out of total.
func NewProgressTracker(w io.Writer, total, every int) *ProgressTracker {
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{w: w, total: total, every: every}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = time.Now()
	p.started = true
	p.done, p.failed, p.lastReported = 0, 0, 0
}

// Increment records n finished files.
func (p *ProgressTracker) Increment(n int) {
	p.advance(n, 0)
}

// Fail records one file that could not be processed.
func (p *ProgressTracker) Fail() {
	p.advance(1, 1)
}

func (p *ProgressTracker) advance(n, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.done = min(p.done+n, p.total)
	p.failed += failed
	if p.done-p.lastReported >= p.every {
		p.report()
		p.lastReported = p.done
	}
}

// Finish prints the final line and ends it.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start, or zero before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return 0
	}
	return time.Since(p.start)
}

// report writes the status line. Caller holds mu.
func (p *ProgressTracker) report() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.done) * 100 / float64(p.total)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\rIngesting: %d/%d files (%.1f%%)", p.done, p.total, pct)

	elapsed := time.Since(p.start)
	if secs := elapsed.Seconds(); secs > 0 && p.done > 0 {
		rate := float64(p.done) / secs
		fmt.Fprintf(&b, " - %.1f files/s", rate)
		if remaining := p.total - p.done; remaining > 0 {
			eta := time.Duration(float64(remaining) / rate * float64(time.Second))
			fmt.Fprintf(&b, ", eta %s", eta.Round(time.Second))
		}
	}
	if p.failed > 0 {
		fmt.Fprintf(&b, ", %d failed", p.failed)
	}
	io.WriteString(p.w, b.String())
}
