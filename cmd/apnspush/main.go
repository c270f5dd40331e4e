package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/kayac/pushflow"
	"github.com/kayac/pushflow/apns"
	"github.com/kayac/pushflow/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var version string

type options struct {
	confPath          string
	token             string
	title             string
	subtitle          string
	body              string
	badge             int
	sound             string
	critical          bool
	volume            float64
	priority          int
	interruptionLevel string
	relevanceScore    float64
	category          string
	threadID          string
	mutable           bool
	contentAvailable  bool
	data              string
	logFormat         string
	logLevel          string
	showVersion       bool
}

func main() {
	var opt options
	registerFlags(flag.CommandLine, &opt)
	flag.Parse()

	if opt.showVersion {
		fmt.Printf("Compiler: %s %s\n", runtime.Compiler, runtime.Version())
		fmt.Printf("apnspush version: %s\n", version)
		return
	}

	os.Exit(run(opt))
}

func registerFlags(fs *flag.FlagSet, opt *options) {
	fs.StringVar(&opt.confPath, "config", config.DefaultConfigPath, "specify config file.")
	fs.StringVar(&opt.confPath, "c", config.DefaultConfigPath, "specify config file.")
	fs.StringVar(&opt.token, "token", "", "apns device token (required)")
	fs.StringVar(&opt.title, "title", "", "alert title")
	fs.StringVar(&opt.subtitle, "subtitle", "", "alert subtitle")
	fs.StringVar(&opt.body, "body", "", "alert body")
	fs.IntVar(&opt.badge, "badge", -1, "badge count (omitted when negative)")
	fs.StringVar(&opt.sound, "sound", apns.DefaultSound, "sound name")
	fs.BoolVar(&opt.critical, "critical", false, "critical alert sound")
	fs.Float64Var(&opt.volume, "volume", -1, "critical sound volume in [0, 1] (omitted when negative)")
	fs.IntVar(&opt.priority, "priority", apns.PriorityImmediate, "apns-priority (5 or 10)")
	fs.StringVar(&opt.interruptionLevel, "interruption-level", "", "passive, active, time-sensitive or critical")
	fs.Float64Var(&opt.relevanceScore, "relevance-score", -1, "relevance score in [0, 1] (omitted when negative)")
	fs.StringVar(&opt.category, "category", "", "notification category")
	fs.StringVar(&opt.threadID, "thread-id", "", "thread id")
	fs.BoolVar(&opt.mutable, "mutable", false, "set mutable-content")
	fs.BoolVar(&opt.contentAvailable, "content-available", false, "set content-available (background push)")
	fs.StringVar(&opt.data, "options", "", "custom keys (key1=value1,key2=value2...)")
	fs.StringVar(&opt.logFormat, "log-format", "", "specifies the log format: ltsv or json. overrides the config file.")
	fs.StringVar(&opt.logLevel, "log-level", "", "set the log level (debug, warn, info). overrides the config file.")
	fs.BoolVar(&opt.showVersion, "v", false, "show version number.")
	fs.BoolVar(&opt.showVersion, "version", false, "show version number.")
	fs.BoolVar(&pushflow.OutputHookStdout, "output-hook-stdout", false, "merge stdout of hook command to pushflow's stdout")
	fs.BoolVar(&pushflow.OutputHookStderr, "output-hook-stderr", false, "merge stderr of hook command to pushflow's stderr")
}

func run(opt options) int {
	conf, err := config.LoadConfig(opt.confPath)
	if err != nil {
		logrus.Error(err)
		return 1
	}
	if err := initLogrus(conf.Log, opt); err != nil {
		logrus.Error(err)
		return 1
	}

	env, err := apns.ParseEnvironment(conf.Apns.Environment)
	if err != nil {
		logrus.Error(err)
		return 1
	}
	addr, err := apns.NewAddress(opt.token, env)
	if err != nil {
		logrus.Error(err)
		return 1
	}
	p, err := buildPayload(opt)
	if err != nil {
		logrus.Error(err)
		return 1
	}

	ac, err := apns.NewClient(conf.Apns)
	if err != nil {
		logrus.Error(err)
		return 1
	}
	sender := pushflow.NewSender(ac, conf)
	defer sender.Close()

	result, err := sender.Push(context.Background(), p, addr)
	if err != nil {
		return 1
	}
	b, err := result.MarshalJSON()
	if err != nil {
		logrus.Error(err)
		return 1
	}
	fmt.Println(string(b))
	if result.Outcome != apns.Delivered {
		return 1
	}
	return 0
}

func initLogrus(c config.SectionLog, opt options) error {
	format, level := c.Format, c.Level
	if opt.logFormat != "" {
		format = opt.logFormat
	}
	if opt.logLevel != "" {
		level = opt.logLevel
	}
	return pushflow.InitLogrus(format, level)
}

func buildPayload(opt options) (*apns.Payload, error) {
	p := apns.NewPayload()
	p.SetTitle(opt.title)
	p.SetSubtitle(opt.subtitle)
	p.SetBody(opt.body)
	p.SetSound(opt.sound)
	p.SetCritical(opt.critical)
	p.SetCategory(opt.category)
	p.SetThreadID(opt.threadID)
	p.SetMutableContent(opt.mutable)
	p.SetContentAvailable(opt.contentAvailable)
	if opt.badge >= 0 {
		p.SetBadge(opt.badge)
	}
	if opt.volume >= 0 {
		if err := p.SetSoundVolume(opt.volume); err != nil {
			return nil, err
		}
	}
	if err := p.SetPriority(opt.priority); err != nil {
		return nil, err
	}
	if err := p.SetInterruptionLevel(apns.InterruptionLevel(opt.interruptionLevel)); err != nil {
		return nil, err
	}
	if opt.relevanceScore >= 0 {
		if err := p.SetRelevanceScore(opt.relevanceScore); err != nil {
			return nil, err
		}
	}

	data, err := parseOptions(opt.data)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		if err := p.AddData(k, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func parseOptions(s string) (map[string]string, error) {
	opts := map[string]string{}
	if s == "" {
		return opts, nil
	}
	for _, opt := range strings.Split(s, ",") {
		kv := strings.SplitN(opt, "=", 2)
		if len(kv) != 2 {
			return nil, errors.Errorf("invalid option %q: expected key=value", opt)
		}
		opts[kv[0]] = kv[1]
	}
	return opts, nil
}
