package mediakeys

import (
	"github.com/godbus/dbus/v5"
)

const (
	mediaKeysBus   = "org.gnome.SettingsDaemon.MediaKeys"
	mediaKeysPath  = "/org/gnome/SettingsDaemon/MediaKeys"
	mediaKeysIface = "org.gnome.SettingsDaemon.MediaKeys"
)

// DBusClient defines the interface for D-Bus operations.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/multiview/internal/mediakeys DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// AddMatchSignal adds a signal match rule
	AddMatchSignal(options ...dbus.MatchOption) error

	// Signal registers a channel to receive D-Bus signals
	Signal(ch chan<- *dbus.Signal)

	// GrabMediaPlayerKeys asks the settings daemon to route media keys to app
	GrabMediaPlayerKeys(app string) error

	// ReleaseMediaPlayerKeys gives the media keys back
	ReleaseMediaPlayerKeys(app string) error
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a real D-Bus client connected to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// AddMatchSignal adds a signal match rule
func (c *StdDBusClient) AddMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.AddMatchSignal(options...)
}

// Signal registers a channel to receive D-Bus signals
func (c *StdDBusClient) Signal(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

// GrabMediaPlayerKeys calls MediaKeys.GrabMediaPlayerKeys with no timestamp
func (c *StdDBusClient) GrabMediaPlayerKeys(app string) error {
	obj := c.conn.Object(mediaKeysBus, mediaKeysPath)
	return obj.Call(mediaKeysIface+".GrabMediaPlayerKeys", 0, app, uint32(0)).Err
}

// ReleaseMediaPlayerKeys calls MediaKeys.ReleaseMediaPlayerKeys
func (c *StdDBusClient) ReleaseMediaPlayerKeys(app string) error {
	obj := c.conn.Object(mediaKeysBus, mediaKeysPath)
	return obj.Call(mediaKeysIface+".ReleaseMediaPlayerKeys", 0, app).Err
}
