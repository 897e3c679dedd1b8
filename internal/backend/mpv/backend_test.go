//go:build !windows

package mpv

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

// fakeMPV speaks enough of the IPC protocol to drive a Backend
type fakeMPV struct {
	ln net.Listener

	mu       sync.Mutex
	commands []string
	props    map[string]any
	watchers []*fakeConn
	fail     map[string]string
}

type fakeConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func (c *fakeConn) send(v any) {
	payload, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.conn.Write(append(payload, '\n'))
}

func startFakeMPV(t *testing.T) (*fakeMPV, string) {
	t.Helper()
	// unix socket paths are length-limited, so stay out of t.TempDir()
	dir, err := os.MkdirTemp("", "mpv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	socketPath := filepath.Join(dir, "ipc.sock")

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	f := &fakeMPV{
		ln: ln,
		props: map[string]any{
			"track-list": []map[string]any{
				{"id": 1, "type": "video", "demux-h": 1080, "selected": true},
				{"id": 2, "type": "video", "demux-h": 540},
				{"id": 1, "type": "audio", "lang": "eng", "selected": true},
			},
			"duration":          5400.0,
			"audio-device-list": []map[string]any{{"name": "auto", "description": "Autoselect device"}},
			"audio-device":      "auto",
			"volume":            100.0,
			"mute":              false,
		},
		fail: map[string]string{},
	}
	t.Cleanup(func() { _ = ln.Close() })
	go f.serve()
	return f, socketPath
}

func (f *fakeMPV) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(&fakeConn{conn: conn})
	}
}

func (f *fakeMPV) handle(c *fakeConn) {
	defer c.conn.Close()
	sc := bufio.NewScanner(c.conn)
	for sc.Scan() {
		var req ipcCommand
		if err := json.Unmarshal(sc.Bytes(), &req); err != nil || len(req.Command) == 0 {
			continue
		}
		name := fmt.Sprint(req.Command[0])

		f.mu.Lock()
		f.commands = append(f.commands, joinCommand(req.Command))
		reason, failing := f.fail[name]
		var data any
		var broadcast []any
		switch name {
		case "observe_property":
			f.watchers = append(f.watchers, c)
		case "get_property":
			data = f.props[fmt.Sprint(req.Command[1])]
		case "set_property":
			prop := fmt.Sprint(req.Command[1])
			f.props[prop] = req.Command[2]
			broadcast = append(broadcast, map[string]any{"event": "property-change", "name": prop, "data": req.Command[2]})
		case "loadfile":
			broadcast = append(broadcast, map[string]any{"event": "start-file"}, map[string]any{"event": "file-loaded"})
		case "stop":
			broadcast = append(broadcast, map[string]any{"event": "end-file", "reason": "stop"})
		}
		watchers := append([]*fakeConn(nil), f.watchers...)
		f.mu.Unlock()

		if failing {
			c.send(map[string]any{"error": reason})
			continue
		}
		c.send(map[string]any{"data": data, "error": "success"})
		for _, ev := range broadcast {
			for _, w := range watchers {
				w.send(ev)
			}
		}
	}
}

func joinCommand(command []any) string {
	parts := make([]string, len(command))
	for i, c := range command {
		parts[i] = fmt.Sprint(c)
	}
	return strings.Join(parts, " ")
}

func (f *fakeMPV) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

func (f *fakeMPV) watcherCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

// hangUp drops the observer connections, as mpv does when its window is closed
func (f *fakeMPV) hangUp() {
	f.mu.Lock()
	watchers := f.watchers
	f.watchers = nil
	f.mu.Unlock()
	for _, w := range watchers {
		_ = w.conn.Close()
	}
}

// drained reports whether events gets closed within the timeout
func drained(events <-chan domain.BackendEvent) bool {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return true
			}
		case <-timeout:
			return false
		}
	}
}

func next(events <-chan domain.BackendEvent) (domain.BackendEvent, bool) {
	select {
	case ev, ok := <-events:
		return ev, ok
	case <-time.After(2 * time.Second):
		return domain.BackendEvent{}, false
	}
}

// nextOf skips notifications until one of kind arrives
func nextOf(events <-chan domain.BackendEvent, kind domain.BackendEventKind) (domain.BackendEvent, bool) {
	for {
		ev, ok := next(events)
		if !ok || ev.Kind == kind {
			return ev, ok
		}
	}
}

// nextStatus skips notifications until status is reported
func nextStatus(events <-chan domain.BackendEvent, status domain.PlayerStatus) bool {
	for {
		ev, ok := nextOf(events, domain.EventStatusChanged)
		if !ok {
			return false
		}
		if ev.Status == status {
			return true
		}
	}
}

func TestBackend(t *testing.T) {
	Convey("Backend attached to an mpv IPC socket", t, func() {
		fake, socketPath := startFakeMPV(t)
		b, err := Attach(socketPath, zap.NewNop())
		So(err, ShouldBeNil)
		Reset(func() { _ = b.Close() })

		// Observers are registered on the persistent connection
		deadline := time.Now().Add(2 * time.Second)
		for fake.watcherCount() == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		So(fake.watcherCount(), ShouldEqual, 1)

		Convey("Open reports opening, both opens and the status", func() {
			So(b.Open("https://cdn.example.com/race.m3u8"), ShouldBeNil)

			ev, ok := next(b.Events())
			So(ok, ShouldBeTrue)
			So(ev.Status, ShouldEqual, domain.StatusOpening)

			ev, ok = nextOf(b.Events(), domain.EventOpenCompleted)
			So(ok, ShouldBeTrue)
			So(ev.Media, ShouldEqual, domain.MediaVideo)
			So(ev.Success, ShouldBeTrue)

			ev, ok = nextOf(b.Events(), domain.EventOpenCompleted)
			So(ok, ShouldBeTrue)
			So(ev.Media, ShouldEqual, domain.MediaAudio)

			So(b.Duration(), ShouldEqual, 90*time.Minute)
			So(b.VideoStreams(), ShouldHaveLength, 2)
			So(b.AudioDevices(), ShouldResemble, []domain.AudioDevice{{ID: "auto", Name: "Autoselect device"}})
			So(b.AudioDevice(), ShouldEqual, "auto")
			So(b.Volume(), ShouldEqual, 100)

			v, ok := b.CurrentVideoStream()
			So(ok, ShouldBeTrue)
			So(v.Height, ShouldEqual, 1080)

			Convey("OpenVideoStream switches the vid property", func() {
				So(b.OpenVideoStream(domain.VideoStream{ID: "2", Height: 540}), ShouldBeNil)
				ev, ok := nextOf(b.Events(), domain.EventOpenCompleted)
				So(ok, ShouldBeTrue)
				So(ev.Media, ShouldEqual, domain.MediaVideo)

				v, _ := b.CurrentVideoStream()
				So(v.ID, ShouldEqual, "2")
				So(fake.sent(), ShouldContain, "set_property vid 2")
			})

			Convey("Pause is reported through the pause property", func() {
				So(b.Pause(), ShouldBeNil)
				So(nextStatus(b.Events(), domain.StatusPaused), ShouldBeTrue)
			})

			Convey("Stop ends the file", func() {
				So(b.Stop(), ShouldBeNil)
				So(nextStatus(b.Events(), domain.StatusStopped), ShouldBeTrue)
			})
		})

		Convey("Volume is clamped and echoed", func() {
			So(b.SetVolume(400), ShouldBeNil)
			ev, ok := nextOf(b.Events(), domain.EventVolumeChanged)
			So(ok, ShouldBeTrue)
			So(ev.Volume, ShouldEqual, domain.MaxVolume)
		})

		Convey("Seek sends seconds", func() {
			So(b.Seek(90*time.Second), ShouldBeNil)
			So(fake.sent(), ShouldContain, "seek 90 absolute")
		})

		Convey("Rejected commands are not retried", func() {
			fake.mu.Lock()
			fake.fail["set_property"] = "property not found"
			fake.mu.Unlock()

			err := b.SetMute(true)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "property not found")

			count := 0
			for _, c := range fake.sent() {
				if c == "set_property mute true" {
					count++
				}
			}
			So(count, ShouldEqual, 1)
		})

		Convey("Invalid targets never reach mpv", func() {
			So(b.Open("--script=x.lua"), ShouldNotBeNil)
			So(fake.sent(), ShouldNotContain, "loadfile --script=x.lua replace")
		})

		Convey("A dropped connection closes Events", func() {
			fake.hangUp()
			So(drained(b.Events()), ShouldBeTrue)
			So(b.Close(), ShouldBeNil)
		})

		Convey("Close leaves an attached mpv running and closes Events", func() {
			So(b.Close(), ShouldBeNil)
			So(b.Close(), ShouldBeNil)
			_, ok := <-b.Events()
			So(ok, ShouldBeFalse)
			So(fake.sent(), ShouldNotContain, "quit")
		})
	})
}
