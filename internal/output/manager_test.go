package output

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func fixedWidth(w int) WidthFunc {
	return func() (int, error) { return w, nil }
}

func TestManagerRegister(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{Output: &buf, Width: fixedWidth(80)})

	for want := 0; want < 3; want++ {
		if id := m.Register(); id != want {
			t.Fatalf("Register() = %d, want %d", id, want)
		}
	}
	if buf.String() != "\n\n\n" {
		t.Errorf("output = %q, want three newlines", buf.String())
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestManagerUpdateRewritesOneRow(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{Output: &buf, Width: fixedWidth(80)})
	first := m.Register()
	m.Register()
	m.Register()
	buf.Reset()

	m.Update(first, "hello")
	want := "\x1b[?7l\x1b[3A\r\x1b[2Khello\x1b[3B\x1b[?7h"
	if got := buf.String(); got != want {
		t.Errorf("Update output = %q, want %q", got, want)
	}
	buf.Reset()

	m.Update(2, "last")
	want = "\x1b[?7l\x1b[1A\r\x1b[2Klast\x1b[1B\x1b[?7h"
	if got := buf.String(); got != want {
		t.Errorf("Update output = %q, want %q", got, want)
	}
	if m.Text(first) != "hello" || m.Text(2) != "last" {
		t.Errorf("stored texts = %q, %q", m.Text(first), m.Text(2))
	}
}

func TestManagerIgnoresUnknownTracks(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{Output: &buf, Width: fixedWidth(80)})
	m.Register()
	buf.Reset()

	m.Update(1, "nope")
	m.Update(-1, "nope")
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestManagerTruncatesToWidth(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{Output: &buf, Width: fixedWidth(11)})
	m.Register()
	buf.Reset()

	m.Update(0, "\x1b[34m"+strings.Repeat("x", 20)+"\x1b[0m")
	want := "\x1b[?7l\x1b[1A\r\x1b[2K\x1b[34m" + strings.Repeat("x", 10) + "\x1b[0m\x1b[1B\x1b[?7h"
	if got := buf.String(); got != want {
		t.Errorf("Update output = %q, want %q", got, want)
	}
}

func TestManagerWidthFallback(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{
		Output: &buf,
		Width:  func() (int, error) { return 0, errors.New("not a terminal") },
	})
	m.Register()
	buf.Reset()

	m.Update(0, strings.Repeat("y", 200))
	if got := strings.Count(buf.String(), "y"); got != defaultTerminalWidth-1 {
		t.Errorf("rendered %d visible chars, want %d", got, defaultTerminalWidth-1)
	}
}

func TestManagerZeroWidth(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager(ManagerOptions{Output: &buf, Width: fixedWidth(1)})
	m.Register()
	buf.Reset()

	m.Update(0, "abc")
	if got, want := buf.String(), "\x1b[?7l\x1b[1A\r\x1b[2K\x1b[1B\x1b[?7h"; got != want {
		t.Errorf("Update output = %q, want %q", got, want)
	}
}

// lockedBuffer records each Write call separately so interleaving shows up.
type lockedBuffer struct {
	mu     sync.Mutex
	writes []string
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, string(p))
	return len(p), nil
}

func TestManagerConcurrentUpdates(t *testing.T) {
	out := &lockedBuffer{}
	m := NewManager(ManagerOptions{Output: out, Width: fixedWidth(80)})
	const tracks = 8
	for i := 0; i < tracks; i++ {
		m.Register()
	}

	var wg sync.WaitGroup
	for i := 0; i < tracks; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Update(id, fmt.Sprintf("track %d step %d", id, j))
			}
		}(i)
	}
	wg.Wait()

	for _, w := range out.writes[tracks:] {
		if !strings.HasPrefix(w, "\x1b[?7l") || !strings.HasSuffix(w, "\x1b[?7h") {
			t.Fatalf("torn write %q", w)
		}
	}
	for i := 0; i < tracks; i++ {
		if want := fmt.Sprintf("track %d step 49", i); m.Text(i) != want {
			t.Errorf("Text(%d) = %q, want %q", i, m.Text(i), want)
		}
	}
}
