package sched

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/spf13/afero"
)

var traceHeader = []string{"timestamp", "event", "task_id", "name", "resumes", "detail"}

type csvTrace struct {
	file afero.File
	w    *csv.Writer
}

// EnableCSVLogging opens the given file path for CSV logging of events.
// Must be called before Run().
func (s *Scheduler) EnableCSVLogging(path string) error {
	f, err := s.fs.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write(traceHeader); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if s.trace != nil {
		_ = s.trace.close()
	}
	s.trace = &csvTrace{file: f, w: w}
	return nil
}

func (c *csvTrace) write(ev StatusEvent) error {
	rec := []string{
		ev.Time.Format(time.RFC3339Nano),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		ev.Name,
		strconv.FormatInt(ev.Resumes, 10),
		ev.Detail,
	}
	if err := c.w.Write(rec); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *csvTrace) close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}
