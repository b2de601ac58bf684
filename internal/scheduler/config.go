package scheduler

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Interval is a schedule period. In YAML it is either a Go duration
// string ("10s", "1m30s") or a bare number of seconds (10, 2.5).
type Interval time.Duration

func (i *Interval) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: interval must be a scalar", value.Line)
	}
	if d, err := time.ParseDuration(value.Value); err == nil {
		*i = Interval(d)
		return nil
	}
	secs, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid interval %q", value.Line, value.Value)
	}
	if secs > maxSeconds {
		return fmt.Errorf("line %d: interval %q out of range", value.Line, value.Value)
	}
	*i = Interval(time.Duration(secs * float64(time.Second)))
	return nil
}

// maxSeconds is the longest interval, in seconds, a time.Duration holds.
const maxSeconds = math.MaxInt64 / float64(time.Second)

// ErrEmptySchedule is returned for a schedule file without entries.
var ErrEmptySchedule = errors.New("schedule has no entries")

// ScheduleSpec is one named schedule entry binding a task to a period.
type ScheduleSpec struct {
	Name       string   `yaml:"-"`
	Task       string   `yaml:"task"`
	Every      Interval `yaml:"every"`
	RunOnStart bool     `yaml:"run_on_start"`
}

type scheduleFile struct {
	Schedule map[string]ScheduleSpec `yaml:"schedule"`
}

// LoadSchedule reads a YAML schedule file.
func LoadSchedule(path string) ([]ScheduleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	return ParseSchedule(data)
}

// ParseSchedule parses schedule YAML. Unknown keys are rejected and at
// least one entry is required. Entries are returned sorted by name.
func ParseSchedule(data []byte) ([]ScheduleSpec, error) {
	var f scheduleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySchedule
		}
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	if len(f.Schedule) == 0 {
		return nil, ErrEmptySchedule
	}

	specs := make([]ScheduleSpec, 0, len(f.Schedule))
	for name, spec := range f.Schedule {
		spec.Name = name
		if spec.Task == "" {
			return nil, fmt.Errorf("schedule %q: task is required", name)
		}
		if spec.Every <= 0 {
			return nil, fmt.Errorf("schedule %q: %w", name, ErrInvalidInterval)
		}
		specs = append(specs, spec)
	}
	slices.SortFunc(specs, func(a, b ScheduleSpec) int { return cmp.Compare(a.Name, b.Name) })
	return specs, nil
}

// Apply registers every spec, resolving task names against jobs.
func (s *Scheduler) Apply(specs []ScheduleSpec, jobs ...Job) error {
	byName := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name()] = j
	}

	for _, spec := range specs {
		job, ok := byName[spec.Task]
		if !ok {
			return fmt.Errorf("schedule %q: %w: %s", spec.Name, ErrUnknownJob, spec.Task)
		}
		if err := s.Add(Entry{
			Job:        job,
			Interval:   time.Duration(spec.Every),
			RunOnStart: spec.RunOnStart,
			Label:      spec.Name,
		}); err != nil {
			return fmt.Errorf("schedule %q: %w", spec.Name, err)
		}
	}
	return nil
}
