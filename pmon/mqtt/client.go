// Package mqtt publishes power monitor readings to an MQTT broker.
//
// The client does not know about the network hardware: it dials the
// broker through a DialFunc, which on the Pico W is provided by the
// netlink package.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/harveysanders/pmon/pmon/analysis"
	"github.com/harveysanders/pmon/pmon/display"
	mqtt "github.com/soypat/natiu-mqtt"
)

// DefaultTopic is the topic readings are published to.
const DefaultTopic = "pmon/telemetry"

// DefaultTimeout bounds each connect and publish exchange with the broker.
const DefaultTimeout = 5 * time.Second

// How long uplink notices stay on the display.
const noticeMillis = 1500

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// Conn is a connection to the broker.
type Conn interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// DialFunc opens a connection to the broker at addr (host:port).
type DialFunc func(addr string) (Conn, error)

// Reading is the telemetry message published for every analysis snapshot.
type Reading struct {
	CurrentMA   uint16        `json:"current_ma"`
	AverageMA   uint16        `json:"average_ma"`
	ChargeMAh   uint16        `json:"charge_mah"`
	Seconds     uint16        `json:"seconds"`
	Samples     uint32        `json:"samples"`
	SinceBootNS time.Duration `json:"since_boot_ns"`
}

// FromSnapshot converts an analysis snapshot to a Reading.
func FromSnapshot(s analysis.Snapshot, sinceBoot time.Duration) Reading {
	return Reading{
		CurrentMA:   s.Current,
		AverageMA:   s.Average,
		ChargeMAh:   s.ChargeMAh,
		Seconds:     s.Seconds,
		Samples:     s.Samples,
		SinceBootNS: sinceBoot,
	}
}

type Client struct {
	ID                string
	Topic             string // Defaults to DefaultTopic.
	Timeout           time.Duration // Defaults to DefaultTimeout.
	Logger            *slog.Logger
	HeartbeatInterval time.Duration
	RetryDelay        time.Duration // Wait between failed dials. Defaults to 2s.
	Username          string        // MQTT broker username (optional)
	Password          string        // MQTT broker password (optional, requires Username)
}

// ConnectAndPublish connects to the broker at addr and publishes every
// reading received on readings, reconnecting whenever the connection is
// lost. Connection changes are reported on notices without blocking.
//
// It only returns when ctx is done or addr is invalid.
func (c *Client) ConnectAndPublish(
	ctx context.Context,
	dial DialFunc,
	addr string,
	readings <-chan Reading,
	notices chan<- display.Notice,
) error {
	if _, _, err := SplitHostPort(addr); err != nil {
		return errors.New("parsing host:port from " + addr + ": " + err.Error())
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	topic := c.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	retryDelay := c.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	heartbeatInterval := c.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}

	logger.Info("mqtt:address", slog.String("addr", addr))

	cfg := mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			logger.Info("mqtt:received", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	}
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.ID))
	if c.Username != "" {
		varconn.Username = []byte(c.Username)
		if c.Password != "" {
			varconn.Password = []byte(c.Password)
		}
	}
	mqttClient := mqtt.NewClient(cfg)

	pubVar := mqtt.VariablesPublish{TopicName: []byte(topic)}

	wait := func(d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}

	// Connection loop for TCP+MQTT.
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("socket:dialing")
		conn, err := dial(addr)
		if err != nil {
			logger.Error("socket:dial-failed", slog.String("err", err.Error()))
			if err := wait(retryDelay); err != nil {
				return err
			}
			continue
		}

		logger.Info("mqtt:start-connecting")
		conn.SetDeadline(time.Now().Add(timeout))
		err = mqttClient.StartConnect(conn, &varconn)
		if err != nil {
			logger.Error("mqtt:start-connect-failed", slog.String("reason", err.Error()))
			closeConn(logger, conn, "connect failed")
			if err := wait(retryDelay); err != nil {
				return err
			}
			continue
		}
		retries := 50
		for retries > 0 && !mqttClient.IsConnected() {
			time.Sleep(100 * time.Millisecond)
			err = mqttClient.HandleNext()
			if err != nil {
				logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
			}
			retries--
		}
		if !mqttClient.IsConnected() {
			logger.Error("mqtt:connect-failed", slog.Any("reason", mqttClient.Err()))
			closeConn(logger, conn, "connect timed out")
			if err := wait(retryDelay); err != nil {
				return err
			}
			continue
		}

		logger.Info("mqtt:connected")
		display.Send(notices, display.Notice{Code: display.MessageUplinkConnected, MinDisplayMillis: noticeMillis})

		err = c.publishLoop(ctx, logger, conn, mqttClient, &pubVar, timeout, heartbeatInterval, readings)

		logger.Error("mqtt:disconnected", slog.Any("reason", mqttClient.Err()))
		display.Send(notices, display.Notice{Code: display.MessageUplinkLost, MinDisplayMillis: noticeMillis})
		closeConn(logger, conn, "disconnected")
		if err != nil {
			return err
		}
		runtime.Gosched()
	}
}

// publishLoop publishes readings while the client is connected. It only
// returns an error when ctx is done.
func (c *Client) publishLoop(
	ctx context.Context,
	logger *slog.Logger,
	conn Conn,
	mqttClient *mqtt.Client,
	pubVar *mqtt.VariablesPublish,
	timeout, heartbeatInterval time.Duration,
	readings <-chan Reading,
) error {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for mqttClient.IsConnected() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reading := <-readings:
			payload, err := json.Marshal(reading)
			if err != nil {
				logger.Error("mqtt:marshal-failed", slog.Any("reason", err))
				continue
			}
			conn.SetDeadline(time.Now().Add(timeout))
			pubVar.PacketIdentifier++
			err = mqttClient.PublishPayload(pubFlags, *pubVar, payload)
			if err != nil {
				logger.Error("mqtt:publish-failed", slog.Any("reason", err))
				continue
			}
			logger.Debug("mqtt:published",
				slog.Uint64("packetID", uint64(pubVar.PacketIdentifier)),
				slog.Int("bytes", len(payload)),
			)
		case <-heartbeat.C:
			// Nothing published for a while: let the client process
			// incoming packets so the broker keeps the session alive.
			conn.SetDeadline(time.Now().Add(timeout))
			err := mqttClient.HandleNext()
			if err != nil {
				logger.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
				continue
			}
		default:
			// TinyGo runs goroutines on a single core; yield to the
			// control loop when there is nothing to do.
			runtime.Gosched()
		}
	}
	return nil
}

func closeConn(logger *slog.Logger, conn Conn, reason string) {
	logger.Error("socket:closing", slog.String("reason", reason))
	if err := conn.Close(); err != nil {
		logger.Error("socket:close-failed", slog.String("err", err.Error()))
	}
}

// SplitHostPort splits a host:port broker address. The port must be a
// decimal number in [1, 65535].
func SplitHostPort(addr string) (host string, port uint16, err error) {
	// Find the last colon to support IPv6 addresses
	colonIdx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colonIdx = i
			break
		}
	}

	if colonIdx == -1 {
		return "", 0, errors.New("missing port in address")
	}

	host = addr[:colonIdx]
	portStr := addr[colonIdx+1:]

	if host == "" {
		return "", 0, errors.New("empty host")
	}
	if portStr == "" {
		return "", 0, errors.New("empty port")
	}
	if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
		host = host[1 : len(host)-1]
	}

	port, ok := parsePort(portStr)
	if !ok {
		return "", 0, errors.New("invalid port " + portStr)
	}
	return host, port, nil
}

// parsePort converts a decimal port string to uint16.
func parsePort(portStr string) (uint16, bool) {
	var port uint32
	for i := 0; i < len(portStr); i++ {
		if portStr[i] < '0' || portStr[i] > '9' {
			return 0, false
		}
		port = port*10 + uint32(portStr[i]-'0')
		if port > 0xffff {
			return 0, false
		}
	}
	if port == 0 {
		return 0, false
	}
	return uint16(port), true
}
