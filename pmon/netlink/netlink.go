//go:build tinygo

// Package netlink brings up the Pico W wireless link and provides TCP
// connections to the telemetry broker over the lneto stack.
//
// Bring-up follows the soypat/cyw43439 examples:
// https://github.com/soypat/cyw43439/tree/main/examples/common
package netlink

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/harveysanders/pmon/pmon/mqtt"
	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/lneto/x/xnet"
)

const (
	mtu      = cyw43439.MTU
	pollTime = 5 * time.Millisecond
)

// Config configures the wireless link.
type Config struct {
	SSID     string
	Password string // Empty joins an open network.
	// Hostname is used for DHCP requests.
	Hostname string
	// StaticAddr is used when DHCP does not complete. Optional.
	StaticAddr netip.Addr
	// TCPBufSize is the size of each TCP receive and transmit buffer.
	TCPBufSize int
	Logger     *slog.Logger
}

// Stack owns the CYW43439 device and the lneto stack on top of it.
type Stack struct {
	s       xnet.StackAsync
	dev     *cyw43439.Device
	log     *slog.Logger
	sendbuf []byte
	bufSize int
}

// Up initializes the wireless chip, joins the network (retrying forever)
// and configures the IP stack with DHCP.
func Up(cfg Config) (*Stack, error) {
	if cfg.Hostname == "" {
		return nil, errors.New("empty hostname")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	bufSize := cfg.TCPBufSize
	if bufSize <= 0 {
		bufSize = 2030 // MTU - ethhdr - iphdr - tcphdr
	}

	start := time.Now()
	dev := cyw43439.NewPicoWDevice()
	dev.SetLogger(logger)

	err := dev.Init(cyw43439.DefaultWifiConfig())
	if err != nil {
		return nil, errors.New("wifi init failed:" + err.Error())
	}
	logger.Info("cyw43439:init", slog.Duration("duration", time.Since(start)))

	for {
		err = dev.JoinWPA2(cfg.SSID, cfg.Password)
		if err == nil {
			break
		}
		logger.Error("wifi:join-failed", slog.String("ssid", cfg.SSID), slog.String("err", err.Error()))
		time.Sleep(5 * time.Second)
	}

	mac, err := dev.HardwareAddr6()
	if err != nil {
		return nil, errors.New("get hardware address:" + err.Error())
	}
	logger.Info("wifi:joined", slog.String("mac", net.HardwareAddr(mac[:]).String()))

	st := &Stack{
		dev:     dev,
		log:     logger,
		sendbuf: make([]byte, mtu),
		bufSize: bufSize,
	}
	err = st.s.Reset(xnet.StackConfig{
		Hostname:        cfg.Hostname,
		MaxTCPConns:     1,
		RandSeed:        time.Since(start).Nanoseconds(),
		HardwareAddress: mac,
		MTU:             mtu,
	})
	if err != nil {
		return nil, errors.New("stack reset:" + err.Error())
	}
	dev.RecvEthHandle(func(pkt []byte) error {
		return st.s.Demux(pkt, 0)
	})

	// Packets must flow while DHCP runs.
	go st.loop()

	if err := st.dhcp(cfg.StaticAddr); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Stack) dhcp(static netip.Addr) error {
	requested := netip.AddrFrom4([4]byte{})
	if static.Is4() {
		requested = static
	}
	rstack := s.s.StackRetrying(50 * time.Millisecond)

	results, err := rstack.DoDHCPv4(requested.As4(), 3*time.Second, 3)
	if err != nil {
		if static.Is4() && !static.IsUnspecified() {
			s.log.Info("dhcp:static-fallback", slog.String("ip", static.String()))
			s.s.SetIPAddr(static)
			return nil
		}
		return errors.New("dhcp failed:" + err.Error())
	}
	if err := s.s.AssimilateDHCPResults(results); err != nil {
		return errors.New("assimilate dhcp:" + err.Error())
	}
	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("resolve gateway:" + err.Error())
	}
	s.s.SetGateway6(gatewayHW)

	s.log.Info("dhcp:complete",
		slog.String("ip", results.AssignedAddr.String()),
		slog.String("router", results.Router.String()),
		slog.Uint64("lease_sec", uint64(results.TLease)),
	)
	return nil
}

// loop moves packets between the chip and the stack forever.
func (s *Stack) loop() {
	for {
		send, recv, _ := s.recvAndSend()
		if send == 0 && recv == 0 {
			time.Sleep(pollTime)
		}
	}
}

func (s *Stack) recvAndSend() (send, recv int, err error) {
	gotPacket, errRecv := s.dev.PollOne()
	if gotPacket {
		recv = 1
	}
	if errRecv != nil {
		s.log.Error("netlink:poll", slog.String("err", errRecv.Error()))
	}

	send, err = s.s.Encapsulate(s.sendbuf, -1, 0)
	if err != nil {
		s.log.Error("netlink:encapsulate", slog.Int("plen", send), slog.String("err", err.Error()))
	} else {
		err = errRecv
	}
	if send == 0 {
		return send, recv, err
	}
	err = s.dev.SendEth(s.sendbuf[:send])
	if err != nil {
		s.log.Error("netlink:send", slog.Int("plen", send), slog.String("err", err.Error()))
	}
	return send, recv, err
}

// Addr returns the IP address of the stack.
func (s *Stack) Addr() netip.Addr {
	return s.s.Addr()
}

// Dial resolves host if needed and opens a TCP connection to addr
// (host:port). It implements mqtt.DialFunc.
func (s *Stack) Dial(addr string) (mqtt.Conn, error) {
	host, port, err := mqtt.SplitHostPort(addr)
	if err != nil {
		return nil, errors.New("dial " + addr + ":" + err.Error())
	}
	rstack := s.s.StackRetrying(pollTime)

	ip, err := netip.ParseAddr(host)
	if err != nil {
		s.log.Info("dns:resolving", slog.String("host", host))
		addrs, err := rstack.DoLookupIP(host, 5*time.Second, 3)
		if err != nil {
			return nil, errors.New("dns lookup for " + host + ":" + err.Error())
		}
		if len(addrs) == 0 {
			return nil, errors.New("dns lookup for " + host + ": no addresses returned")
		}
		ip = addrs[0]
	}

	c := &Conn{}
	err = c.conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, s.bufSize),
		TxBuf:             make([]byte, s.bufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return nil, errors.New("tcp configure:" + err.Error())
	}

	localPort := uint16(s.s.Prand32()>>17) + 1024
	s.log.Info("socket:dialing",
		slog.String("addr", ip.String()),
		slog.Uint64("localPort", uint64(localPort)),
	)
	err = rstack.DoDialTCP(&c.conn, localPort, netip.AddrPortFrom(ip, port), 10*time.Second, 3)
	if err != nil {
		c.Close()
		return nil, errors.New("tcp dial:" + err.Error())
	}
	s.log.Info("tcp:connected", slog.String("state", c.conn.State().String()))
	return c, nil
}

// Conn is a TCP connection of the stack.
type Conn struct {
	conn tcp.Conn
}

func (c *Conn) Read(b []byte) (int, error)  { return c.conn.Read(b) }
func (c *Conn) Write(b []byte) (int, error) { return c.conn.Write(b) }

func (c *Conn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

// Close closes the connection, waiting up to 5s for the peer before
// aborting it.
func (c *Conn) Close() error {
	err := c.conn.Close()
	for i := 0; i < 50 && !c.conn.State().IsClosed(); i++ {
		time.Sleep(100 * time.Millisecond)
	}
	c.conn.Abort()
	return err
}
