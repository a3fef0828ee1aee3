package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/harveysanders/pmon/pmon/analysis"
	"github.com/harveysanders/pmon/pmon/display"
)

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		wantHost string
		wantPort uint16
		wantErr  string
	}{
		{name: "ip", addr: "10.0.0.9:1883", wantHost: "10.0.0.9", wantPort: 1883},
		{name: "hostname", addr: "broker.local:8883", wantHost: "broker.local", wantPort: 8883},
		{name: "ipv6", addr: "[fe80::1]:1883", wantHost: "fe80::1", wantPort: 1883},
		{name: "no port", addr: "broker.local", wantErr: "missing port in address"},
		{name: "empty host", addr: ":1883", wantErr: "empty host"},
		{name: "empty port", addr: "broker:", wantErr: "empty port"},
		{name: "not a number", addr: "broker:mqtt", wantErr: "invalid port mqtt"},
		{name: "too big", addr: "broker:70000", wantErr: "invalid port 70000"},
		{name: "zero", addr: "broker:0", wantErr: "invalid port 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			host, port, err := SplitHostPort(tt.addr)
			if tt.wantErr != "" {
				c.Assert(err, qt.ErrorMatches, tt.wantErr)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(host, qt.Equals, tt.wantHost)
			c.Assert(port, qt.Equals, tt.wantPort)
		})
	}
}

func TestReadingJSON(t *testing.T) {
	c := qt.New(t)

	r := FromSnapshot(analysis.Snapshot{
		Current:   420,
		Average:   300,
		ChargeMAh: 12,
		Seconds:   95,
		Samples:   9500,
	}, 2*time.Second)

	b, err := json.Marshal(r)
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.JSONEquals, map[string]any{
		"current_ma":    420,
		"average_ma":    300,
		"charge_mah":    12,
		"seconds":       95,
		"samples":       9500,
		"since_boot_ns": 2e9,
	})
}

func TestConnectAndPublishInvalidAddr(t *testing.T) {
	c := qt.New(t)

	cl := &Client{ID: "pmon-test"}
	dial := func(addr string) (Conn, error) {
		c.Fatalf("dial called with invalid address %q", addr)
		return nil, nil
	}
	err := cl.ConnectAndPublish(context.Background(), dial, "broker", nil, nil)
	c.Assert(err, qt.ErrorMatches, "parsing host:port from broker: missing port in address")
}

func TestConnectAndPublishRetriesDial(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dialed []string
	dial := func(addr string) (Conn, error) {
		dialed = append(dialed, addr)
		if len(dialed) == 3 {
			cancel()
		}
		return nil, errors.New("no route to host")
	}

	notices := make(chan display.Notice, 4)
	cl := &Client{ID: "pmon-test", RetryDelay: time.Millisecond}
	err := cl.ConnectAndPublish(ctx, dial, "10.0.0.9:1883", make(chan Reading), notices)
	c.Assert(err, qt.Equals, context.Canceled)
	c.Assert(dialed, qt.DeepEquals, []string{"10.0.0.9:1883", "10.0.0.9:1883", "10.0.0.9:1883"})
	// Never connected, so nothing to report.
	c.Assert(notices, qt.HasLen, 0)
}

// deadlineConn records deadlines and fails every write.
type deadlineConn struct {
	deadlines []time.Time
}

func (d *deadlineConn) Read(b []byte) (int, error)  { return 0, errors.New("closed") }
func (d *deadlineConn) Write(b []byte) (int, error) { return 0, errors.New("broken pipe") }
func (d *deadlineConn) Close() error                { return nil }

func (d *deadlineConn) SetDeadline(t time.Time) error {
	d.deadlines = append(d.deadlines, t)
	return nil
}

func TestConnectAndPublishDefaultTimeout(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := &deadlineConn{}
	dial := func(addr string) (Conn, error) {
		cancel()
		return conn, nil
	}

	start := time.Now()
	cl := &Client{ID: "pmon-test", RetryDelay: time.Millisecond}
	err := cl.ConnectAndPublish(ctx, dial, "10.0.0.9:1883", make(chan Reading), make(chan display.Notice, 1))
	c.Assert(err, qt.Equals, context.Canceled)
	c.Assert(conn.deadlines, qt.HasLen, 1)
	c.Assert(conn.deadlines[0].After(start.Add(DefaultTimeout-time.Second)), qt.IsTrue)
}
