package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/urfave/cli"

	"corun/internal/job"
	"corun/internal/logger"
	"corun/internal/sched"
)

func main() {
	if err := Execute(os.Args, os.Stdout, afero.NewOsFs()); err != nil {
		fmt.Fprintln(os.Stderr, "corun:", err)
		os.Exit(1)
	}
}

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to a YAML config file",
	},
	cli.StringFlag{
		Name:  "trace, t",
		Usage: "write a CSV trace of scheduler events to `FILE`",
	},
	cli.Float64Flag{
		Name:  "scale, s",
		Usage: "multiply every sleep by `FACTOR` (overrides config)",
	},
	cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "log every scheduler event",
	},
}

// Execute runs the corun command line against fsys, writing workload output
// to out.
func Execute(args []string, out io.Writer, fsys afero.Fs) error {
	app := cli.App{
		Name:      "corun",
		HelpName:  "corun",
		Usage:     "run demo workloads on the cooperative scheduler",
		UsageText: "corun [global options] <command>",
		Writer:    out,
		Flags:     globalFlags,
		Commands: []cli.Command{
			{
				Name:   "countdown",
				Usage:  "a countdown and a countup task sleeping at different rates",
				Action: withScheduler(out, fsys, countdown),
			},
			{
				Name:   "produce",
				Usage:  "a producer feeding consumers through a closable queue",
				Action: withScheduler(out, fsys, produce),
			},
			{
				Name:   "callbacks",
				Usage:  "a countdown driven by CallLater callbacks",
				Action: withScheduler(out, fsys, callbacks),
			},
		},
	}
	return app.Run(args)
}

type workload func(s *sched.Scheduler, cfg sched.Config, out io.Writer)

func withScheduler(out io.Writer, fsys afero.Fs, w workload) func(*cli.Context) error {
	return func(c *cli.Context) error {
		cfg, err := sched.Load(fsys, c.GlobalString("config"))
		if err != nil {
			return err
		}
		if scale := c.GlobalFloat64("scale"); scale > 0 {
			cfg.Scheduler.TimeScale = scale
		}
		if trace := c.GlobalString("trace"); trace != "" {
			cfg.Scheduler.TraceCSV = trace
		}
		if c.GlobalBool("verbose") {
			cfg.Scheduler.LogEvents = true
		}

		lg := logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags))
		lg.Verbose = cfg.Scheduler.LogEvents
		defer lg.Close()

		s := sched.New(cfg, sched.WithLogger(lg), sched.WithFs(fsys))
		if cfg.Scheduler.TraceCSV != "" {
			if err := s.EnableCSVLogging(cfg.Scheduler.TraceCSV); err != nil {
				return fmt.Errorf("enable trace: %w", err)
			}
		}
		defer s.Close()

		w(s, cfg, out)
		s.Run()
		if len(s.Stranded()) > 0 {
			s.Shutdown()
		}

		st := s.Stats()
		lg.Info("spawned=%d finished=%d failed=%d cancelled=%d dispatches=%d timer_waits=%d",
			st.Spawned, st.Finished, st.Failed, st.Cancelled, st.Dispatches, st.TimerWaits)
		return s.Failures()
	}
}

func countdown(s *sched.Scheduler, cfg sched.Config, out io.Writer) {
	interval := cfg.Demo.Interval()
	s.NewNamedTask("countdown", job.Countdown(out, cfg.Demo.Count, 4*interval))
	s.NewNamedTask("countup", job.Countup(out, cfg.Demo.Count, interval))
}

func produce(s *sched.Scheduler, cfg sched.Config, out io.Writer) {
	q := sched.NewQueue[int](s)
	s.NewNamedTask("producer", job.Producer(q, out, cfg.Demo.Count, cfg.Demo.Interval()))
	for i := 1; i <= cfg.Demo.Consumers; i++ {
		name := fmt.Sprintf("consumer-%d", i)
		s.NewNamedTask(name, job.Consumer(q, out, name))
	}
}

func callbacks(s *sched.Scheduler, cfg sched.Config, out io.Writer) {
	s.CallSoon(func() {
		job.CallbackCountdown(s, out, cfg.Demo.Count, cfg.Demo.Interval())
	})
}
