package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/turbekoff/lcdcalc/pkg/calculator"
	"github.com/turbekoff/lcdcalc/pkg/env"
	"github.com/turbekoff/lcdcalc/pkg/spelling"
	"github.com/turbekoff/lcdcalc/pkg/wordlist"
)

func TestPress(t *testing.T) {
	s := calculator.NewState()
	for _, data := range []string{"2", "+", "3", "*", "4", "="} {
		var err error
		s, err = press(s, data)
		if err != nil {
			t.Fatalf("press(%q): %v", data, err)
		}
	}
	if s.Display != "        20" {
		t.Errorf("got display %q", s.Display)
	}

	before := s
	s, err := press(s, "T")
	if !errors.Is(err, ErrUnsupported) || !errors.Is(err, calculator.ErrUnknownAction) {
		t.Errorf("got %v, want ErrUnsupported", err)
	}
	if s != before {
		t.Errorf("unsupported key changed state")
	}
}

func TestSpell(t *testing.T) {
	start, _ := press(calculator.NewState(), "9")
	start, _ = press(start, "+")

	s, status, err := spell(start, " hello ")
	if err != nil {
		t.Fatal(err)
	}
	if status != "HELLO -> 0.7734" {
		t.Errorf("got status %q", status)
	}
	if s.Display != "    0.7734" || s.Pending != calculator.OpNone || s.HasAccumulator {
		t.Errorf("unexpected state %+v", s)
	}

	tests := []struct {
		word   string
		status string
		err    error
	}{
		{"", "Type a word first: /spell HELLO", spelling.ErrNotAlphabetic},
		{"jump", "Strict mode: cannot map J, U, M, P.", nil},
		{"h3llo", "Strict mode: letters A-Z only.", spelling.ErrNotAlphabetic},
		{"sleighbells", "Too long for display (10 max).", spelling.ErrTooLong},
	}
	for _, tt := range tests {
		got, status, err := spell(start, tt.word)
		if err == nil {
			t.Errorf("spell(%q): expected error", tt.word)
		}
		if tt.err != nil && !errors.Is(err, tt.err) {
			t.Errorf("spell(%q) error = %v, want %v", tt.word, err, tt.err)
		}
		if status != tt.status {
			t.Errorf("spell(%q) status = %q, want %q", tt.word, status, tt.status)
		}
		if got != start {
			t.Errorf("spell(%q) changed state", tt.word)
		}
	}
}

func TestRenderDisplay(t *testing.T) {
	s := calculator.NewState()
	if got, want := renderDisplay(s, ""), "```\n         0\n```"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got := renderDisplay(s.InjectValue("0.7734"), "HELLO -> 0.7734")
	if !strings.HasPrefix(got, `HELLO \-\> 0\.7734`+"\n") {
		t.Errorf("status not escaped: %q", got)
	}
}

func TestChallengeText(t *testing.T) {
	if got := challengeText(nil); got != "No words to suggest." {
		t.Errorf("got %q", got)
	}

	got := challengeText([]wordlist.Entry{{Word: "HELLO", Numeral: "0.7734"}})
	if want := "Try spelling:\n/spell HELLO (0.7734)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	r := env.NewReader(func(name string) (string, bool) {
		if name == "CALCBOT_TELEGRAM_TOKEN" {
			return "token", true
		}
		return "", false
	})
	if err := r.Read(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.SessionTTLTimeout != 20*time.Minute || cfg.ShutdownTimeout != 2*time.Minute {
		t.Errorf("unexpected timeouts %+v", cfg)
	}
	if cfg.ChallengeSize != 3 || cfg.BotTimeout != 60 || cfg.WordListPath != "" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestSessionCache(t *testing.T) {
	now := time.Unix(1000, 0)
	sc := NewSessionCache[calculator.State](time.Minute, time.Hour)
	sc.now = func() time.Time { return now }
	defer sc.Close()

	if _, ok := sc.Get("1_1"); ok {
		t.Fatal("empty cache returned a session")
	}

	state := calculator.NewState().Digit('7')
	sc.Set("1_1", state)
	got, ok := sc.Get("1_1")
	if !ok || got != state {
		t.Fatalf("got %+v, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := sc.Get("1_1"); ok {
		t.Error("expired session returned")
	}
	sc.cleanExpired()
	if !sc.IsEmpty() {
		t.Errorf("expired session kept, len %d", sc.Len())
	}
}

func TestSessionCacheShutdown(t *testing.T) {
	now := time.Unix(1000, 0)
	sc := NewSessionCache[calculator.State](time.Minute, time.Hour)
	sc.now = func() time.Time { return now }
	sc.Set("1_1", calculator.NewState())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sc.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded while a session is live", err)
	}

	if sc.Set("2_2", calculator.NewState()) {
		t.Error("new session accepted during shutdown")
	}
	if !sc.Set("1_1", calculator.NewState().Digit('1')) {
		t.Error("existing session rejected during shutdown")
	}

	if err := sc.Shutdown(context.Background()); !errors.Is(err, ErrSessionsClosed) {
		t.Errorf("got %v, want ErrSessionsClosed", err)
	}

	// a drain that timed out is forced by Close
	if err := sc.Close(); err != nil {
		t.Fatalf("Close after timed out Shutdown: %v", err)
	}
	if !sc.IsEmpty() {
		t.Errorf("Close kept %d sessions", sc.Len())
	}
	if err := sc.Close(); !errors.Is(err, ErrSessionsClosed) {
		t.Errorf("got %v, want ErrSessionsClosed", err)
	}
}

func TestSessionCacheClose(t *testing.T) {
	sc := NewSessionCache[calculator.State](time.Minute, time.Hour)
	sc.Set("1_1", calculator.NewState())
	if err := sc.Close(); err != nil {
		t.Fatal(err)
	}
	if !sc.IsEmpty() {
		t.Error("Close kept sessions")
	}
}
