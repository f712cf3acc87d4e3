package script

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thelolagemann/galvo/pkg/log"
)

type recorder []string

func (r *recorder) Dispatch(batch string) error {
	*r = append(*r, batch)
	if strings.HasPrefix(batch, "nope") {
		return errors.New("unknown control")
	}
	return nil
}

func TestRun(t *testing.T) {
	for _, test := range []struct {
		name    string
		src     string
		batches []string
		logged  string
		err     bool
	}{
		{
			name:    "loop",
			src:     `for i = 1, 3 do send("master:" .. (70 + i)) end`,
			batches: []string{"master:71", "master:72", "master:73"},
		},
		{
			name:    "error result",
			src:     `local err = send("nope:1") if err then log("failed: " .. err) end`,
			batches: []string{"nope:1"},
			logged:  "failed: unknown control",
		},
		{
			name:    "sleep",
			src:     `send("a") sleep(1) send("b")`,
			batches: []string{"a", "b"},
		},
		{
			name: "syntax",
			src:  `send(`,
			err:  true,
		},
		{
			name: "bad argument",
			src:  `send({})`,
			err:  true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var rec recorder
			var buf bytes.Buffer
			err := NewRunner(&rec, log.NewWriter(&buf, false)).Run(context.Background(), test.name, test.src)
			if (err != nil) != test.err {
				t.Fatalf("got error %v", err)
			}
			if len(rec) != len(test.batches) {
				t.Fatalf("got batches %q", rec)
			}
			for i := range rec {
				if rec[i] != test.batches[i] {
					t.Errorf("batch %d: got %q, want %q", i, rec[i], test.batches[i])
				}
			}
			if !strings.Contains(buf.String(), test.logged) {
				t.Errorf("log %q does not contain %q", buf.String(), test.logged)
			}
		})
	}
}

func TestInterrupt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var rec recorder
	err := NewRunner(&rec, nil).Run(ctx, "forever", `while true do send("x:1") sleep(5) end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v", err)
	}
	if len(rec) == 0 {
		t.Error("script never ran")
	}
}

func TestRunFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "show.lua")
	if err := os.WriteFile(p, []byte(`send("mode:MODE2")`), 0o644); err != nil {
		t.Fatal(err)
	}
	var rec recorder
	if err := NewRunner(&rec, nil).RunFile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if len(rec) != 1 || rec[0] != "mode:MODE2" {
		t.Errorf("got %q", rec)
	}
	if err := NewRunner(&rec, nil).RunFile(context.Background(), p+".missing"); err == nil {
		t.Error("expected error")
	}
}
