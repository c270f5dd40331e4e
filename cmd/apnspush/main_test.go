package main

import (
	"flag"
	"io/ioutil"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kayac/pushflow/apns"
	"github.com/kayac/pushflow/config"
)

func TestParseOptions(t *testing.T) {
	got, err := parseOptions("room=42,url=https://example.com/?a=b")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"room": "42", "url": "https://example.com/?a=b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseOptions("room"); err == nil {
		t.Error("option without value must be rejected")
	}
}

func TestBuildPayload(t *testing.T) {
	opt := options{
		body:     "hello",
		badge:    0,
		sound:    apns.DefaultSound,
		volume:   -1,
		priority: apns.PriorityImmediate,
		data:     "room=42",

		relevanceScore: -1,
	}
	p, err := buildPayload(opt)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if g, w := string(b), `{"aps":{"alert":{"body":"hello"},"badge":0,"sound":"default"},"room":"42"}`; g != w {
		t.Errorf("got %s want %s", g, w)
	}

	opt.volume = 0.5
	if _, err := buildPayload(opt); apns.KindOf(err) != apns.KindValidation {
		t.Errorf("volume without critical must be rejected: %v", err)
	}
	opt.critical, opt.priority = true, 7
	if _, err := buildPayload(opt); apns.KindOf(err) != apns.KindValidation {
		t.Errorf("bad priority must be rejected: %v", err)
	}
	opt.priority, opt.data = apns.PriorityConserve, "aps=x"
	if _, err := buildPayload(opt); apns.KindOf(err) != apns.KindValidation {
		t.Errorf("reserved key must be rejected: %v", err)
	}
}

func TestConfigFlags(t *testing.T) {
	var opt options
	fs := flag.NewFlagSet("apnspush", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	registerFlags(fs, &opt)

	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if opt.confPath != config.DefaultConfigPath {
		t.Errorf("default config: got %s", opt.confPath)
	}
	if l, s := fs.Lookup("config").DefValue, fs.Lookup("c").DefValue; l != s {
		t.Errorf("-config and -c defaults differ: %s %s", l, s)
	}

	if err := fs.Parse([]string{"-c", "./local.toml"}); err != nil {
		t.Fatal(err)
	}
	if opt.confPath != "./local.toml" {
		t.Errorf("-c: got %s", opt.confPath)
	}
}
