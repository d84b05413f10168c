package core

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewClock()
	c.now = func() time.Time { return now }

	c.Update()
	if c.Elapsed() != 0 {
		t.Fatalf("Clock.Elapsed before Start:\nhave %v\nwant 0", c.Elapsed())
	}

	c.Start()
	now = now.Add(250 * time.Millisecond)
	c.Update()
	if have, want := c.Elapsed(), 250*time.Millisecond; have != want {
		t.Fatalf("Clock.Elapsed:\nhave %v\nwant %v", have, want)
	}

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	if have, want := c.Elapsed(), 250*time.Millisecond; have != want {
		t.Fatalf("Clock.Elapsed after Stop:\nhave %v\nwant %v", have, want)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < AVG_COUNT; i++ {
		m.Update(0.010)
	}
	if have := m.FrameTime(); have < 9.999 || have > 10.001 {
		t.Fatalf("Metrics.FrameTime:\nhave %v\nwant 10", have)
	}
	// 30 frames of 10ms do not fill a second yet.
	if m.FPS() != 0 {
		t.Fatalf("Metrics.FPS:\nhave %v\nwant 0", m.FPS())
	}
	for i := 0; i < 100; i++ {
		m.Update(0.010)
	}
	if m.FPS() < 99 || m.FPS() > 101 {
		t.Fatalf("Metrics.FPS:\nhave %v\nwant ~100", m.FPS())
	}
	if m.TotalFrames() != AVG_COUNT+100 {
		t.Fatalf("Metrics.TotalFrames:\nhave %d\nwant %d", m.TotalFrames(), AVG_COUNT+100)
	}
}

func TestIdentifier(t *testing.T) {
	a, b := NewIdentifier(), NewIdentifier()
	if a == b {
		t.Fatalf("NewIdentifier:\nhave %v twice\nwant distinct values", a)
	}
	if s := ShortIdentifier(a); len(s) != 8 || !strings.HasPrefix(a.String(), s) {
		t.Fatalf("ShortIdentifier:\nhave %q\nwant prefix of %q", s, a.String())
	}
}

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() { ConfigureLogging(DefaultConfig().Logging) })

	if err := ConfigureLogging(LoggingConfig{Level: "chatty"}); err == nil {
		t.Fatal("ConfigureLogging(bad level):\nhave nil\nwant error")
	}

	var buf bytes.Buffer
	if err := ConfigureLogging(LoggingConfig{Level: "warn"}); err != nil {
		t.Fatal(err)
	}
	SetLogOutput(&buf)
	LogInfo("quiet %d", 1)
	LogWarn("loud %d", 2)
	if out := buf.String(); strings.Contains(out, "quiet") || !strings.Contains(out, "loud 2") {
		t.Fatalf("warn level output:\nhave %q\nwant only the warning", out)
	}

	path := filepath.Join(t.TempDir(), "anima.log")
	if err := ConfigureLogging(LoggingConfig{Level: "debug", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	LogDebug("to file %s", "ok")
	if err := CloseLogging(); err != nil {
		t.Fatalf("CloseLogging:\nhave %v\nwant nil", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file ok") {
		t.Fatalf("log file:\nhave %q\nwant the debug line", data)
	}
}

func TestLoggingConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	loggers := make([]*logger, 8)
	for i := range loggers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loggers[i] = getLogger()
			LogDebug("worker %d", i)
		}(i)
	}
	wg.Wait()
	for i, l := range loggers {
		if l == nil || l != loggers[0] {
			t.Fatalf("getLogger from goroutine %d:\nhave %p\nwant %p", i, l, loggers[0])
		}
	}
}
