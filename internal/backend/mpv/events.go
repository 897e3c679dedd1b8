package mpv

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
)

// mpvEvent is one asynchronous message from mpv
type mpvEvent struct {
	Event     string          `json:"event"`
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

// observed properties, registered with observe_property ids 1..n
var observed = []string{
	"time-pos",
	"pause",
	"volume",
	"mute",
	"audio-device",
	"audio-device-list",
	"track-list",
	"duration",
}

// eventListener owns the persistent connection mpv pushes events on.
// Property observers belong to the connection that registered them, so the
// observe_property commands are written here rather than through sendCommand.
type eventListener struct {
	logger   *zap.Logger
	conn     net.Conn
	handle   func(mpvEvent)
	done     chan struct{}
	stopOnce sync.Once
}

func startEventListener(socketPath string, logger *zap.Logger, handle func(mpvEvent)) (*eventListener, error) {
	conn, err := dial(socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range observed {
		payload, err := json.Marshal(ipcCommand{Command: []any{"observe_property", i + 1, name}})
		if err == nil {
			_, err = conn.Write(append(payload, '\n'))
		}
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el := &eventListener{
		logger: logger,
		conn:   conn,
		handle: handle,
		done:   make(chan struct{}),
	}
	go el.readLoop()

	logger.Debug("mpv event listener started", zap.Strings("observing", observed))
	return el, nil
}

// readLoop reads newline-delimited JSON until the connection closes
func (el *eventListener) readLoop() {
	defer close(el.done)

	r := bufio.NewReader(el.conn)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				el.logger.Warn("mpv event listener read error", zap.Error(err))
			}
			return
		}
		el.processLine(line)
	}
}

// processLine parses and dispatches a single mpv line. Replies to the
// observe_property commands carry no event and are dropped.
func (el *eventListener) processLine(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	var ev mpvEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		el.logger.Debug("Skipping unparseable mpv line", zap.ByteString("line", line))
		return
	}
	if ev.Event == "" {
		return
	}
	el.handle(ev)
}

// Stop closes the connection and waits for the read loop to exit
func (el *eventListener) Stop() {
	el.stopOnce.Do(func() {
		_ = el.conn.Close()
	})
	<-el.done
}
