// Package sysinfo samples host CPU and memory usage for the taskbar tray.
package sysinfo

import (
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// UpdateInterval is the minimum time between samples.
const UpdateInterval = time.Second

const historyLen = 10

// Reader reads current CPU and memory utilisation as percentages.
type Reader func() (cpuPercent, memPercent float64, err error)

// HostUsage reads utilisation via gopsutil. CPU usage is measured since the previous call.
func HostUsage() (float64, float64, error) {
	c, err := cpu.Percent(0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("cpu usage: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("memory usage: %w", err)
	}
	var cpuPct float64
	if len(c) > 0 {
		cpuPct = c[0]
	}
	return cpuPct, vm.UsedPercent, nil
}

// Sampler keeps a short CPU history and the latest memory reading.
type Sampler struct {
	read       Reader
	last       time.Time
	cpuHistory []float64
	memPercent float64
	err        error
}

// NewSampler returns a sampler using read, or HostUsage when nil.
func NewSampler(read Reader) *Sampler {
	if read == nil {
		read = HostUsage
	}
	return &Sampler{read: read}
}

// Update takes a sample if UpdateInterval has passed since the last one.
// It reports whether a sample was taken.
func (s *Sampler) Update(now time.Time) bool {
	if !s.last.IsZero() && now.Sub(s.last) < UpdateInterval {
		return false
	}
	s.last = now

	c, m, err := s.read()
	s.err = err
	if err != nil {
		return true
	}

	if len(s.cpuHistory) >= historyLen {
		s.cpuHistory = s.cpuHistory[1:]
	}
	s.cpuHistory = append(s.cpuHistory, clampPercent(c))
	s.memPercent = clampPercent(m)
	return true
}

// Err returns the error from the last sample, if any.
func (s *Sampler) Err() error { return s.err }

// CPU returns the latest CPU reading.
func (s *Sampler) CPU() float64 {
	if len(s.cpuHistory) == 0 {
		return 0
	}
	return s.cpuHistory[len(s.cpuHistory)-1]
}

// Memory returns the latest memory reading.
func (s *Sampler) Memory() float64 { return s.memPercent }

// CPUGraph returns a fixed-width "CPU:" label, bar graph and percentage so the
// taskbar layout never shifts.
func (s *Sampler) CPUGraph() string {
	var graph strings.Builder
	if pad := historyLen - len(s.cpuHistory); pad > 0 {
		graph.WriteString(strings.Repeat(" ", pad))
	}
	for _, usage := range s.cpuHistory {
		graph.WriteRune(bar(usage))
	}
	return fmt.Sprintf("CPU:%s %3.0f%%", graph.String(), s.CPU())
}

// MemoryLabel returns a fixed-width memory reading.
func (s *Sampler) MemoryLabel() string {
	return fmt.Sprintf("RAM:%3.0f%%", s.memPercent)
}

var bars = []rune("▁▂▃▄▅▆▇█")

func bar(usage float64) rune {
	// 100/8 = 12.5
	return bars[min(int(usage/12.5), len(bars)-1)]
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
