//go:build tinygo

// pmon is a USB power monitor: it samples the current through an INA219
// and shows it on a 128x64 SSD1306 OLED, optionally publishing readings to
// an MQTT broker when built for the Pico W with wifi credentials.
//
//	tinygo flash -target=pico-w -ldflags="-X main.ssid=home -X main.pass=secret -X main.broker=10.0.0.9:1883" ./pmon
package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"github.com/harveysanders/pmon/pmon/analysis"
	"github.com/harveysanders/pmon/pmon/display"
	"github.com/harveysanders/pmon/pmon/leds"
	"github.com/harveysanders/pmon/pmon/mqtt"
	"github.com/harveysanders/pmon/pmon/netlink"
	"github.com/harveysanders/pmon/pmon/sensor"
	"github.com/harveysanders/pmon/pmon/timer"
	"tinygo.org/x/drivers/ina219"
	"tinygo.org/x/drivers/ssd1306"
)

// Set with -ldflags "-X main.ssid=...". The uplink is disabled when ssid
// is empty.
var (
	ssid   string
	pass   string
	broker = "10.0.0.9:1883"
)

const (
	oledAddr = 0x3C

	sampleInterval  = 10 * time.Millisecond
	graphInterval   = 250 * time.Millisecond
	pageInterval    = 5 * time.Second
	publishInterval = time.Second

	splashMillis      = 2500
	resetMillis       = 1500
	sensorErrorMillis = 1000
)

func main() {
	boot := time.Now()
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	machine.GP15.Configure(machine.PinConfig{Mode: machine.PinOutput})
	errLED := leds.NewActionLed(machine.GP15, leds.DefaultOnTime)
	machine.GP21.Configure(machine.PinConfig{Mode: machine.PinOutput})
	debug := leds.NewDebug(machine.GP21)

	resetButton := machine.GP14
	resetButton.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		printErrForever(logger, "configure I2C", slog.Any("reason", err))
	}

	oled := ssd1306.NewI2C(machine.I2C0)
	oled.Configure(ssd1306.Config{
		Width:   display.Width,
		Height:  display.Height,
		Address: oledAddr,
	})
	oled.ClearDisplay()

	screen := display.NewScreen(display.NewStripeBuffer(oled, 16), timer.New(), logger)
	screen.Setup()
	screen.ActivateMessage(display.MessageSplash, splashMillis)

	current := sensor.New(machine.I2C0, ina219.Config32V2A, logger)
	if err := current.Configure(); err != nil {
		printErrForever(logger, "configure current sensor", slog.Any("reason", err))
	}

	notices := make(chan display.Notice, 4)
	// Buffered channel of 10 readings. Readings are dropped while the
	// uplink is down.
	readings := make(chan mqtt.Reading, 10)
	if ssid != "" {
		go uplink(logger, readings, notices)
	}

	analyzer := analysis.New()
	graphTimer := timer.New()
	pageTimer := timer.New()
	publishTimer := timer.New()
	showSummary := false
	buttonWasUp := true

	for {
		debug.Toggle()
		errLED.Loop()
		screen.Drain(notices)

		mA, cached, err := current.ReadCurrent()
		if err != nil {
			logger.Error("sensor:read-failed", slog.String("err", err.Error()))
			errLED.Action()
			screen.ActivateMessage(display.MessageSensorError, sensorErrorMillis)
		} else if !cached {
			analyzer.Add(mA)
		}

		buttonUp := resetButton.Get()
		if buttonWasUp && !buttonUp {
			logger.Info("analysis:reset")
			analyzer.Reset()
			screen.ClearGraphBuffer()
			screen.ActivateMessage(display.MessageAnalysisReset, resetMillis)
		}
		buttonWasUp = buttonUp

		if pageTimer.Elapsed() >= pageInterval {
			pageTimer.Restart()
			showSummary = !showSummary
		}

		if graphTimer.Elapsed() >= graphInterval {
			graphTimer.Restart()
			snap := analyzer.Snapshot()
			screen.AppendGraphPoint(snap.Current)
			if showSummary {
				screen.RenderSummaryPage(snap.Current, snap.Average, snap.ChargeMAh, snap.Seconds)
			} else {
				screen.RenderGraphPage(snap.Current, snap.Average)
			}
		}

		if ssid != "" && publishTimer.Elapsed() >= publishInterval {
			publishTimer.Restart()
			select {
			case readings <- mqtt.FromSnapshot(analyzer.Snapshot(), time.Since(boot)):
			default:
			}
		}

		time.Sleep(sampleInterval)
	}
}

// uplink joins the wifi network and publishes readings forever.
func uplink(logger *slog.Logger, readings <-chan mqtt.Reading, notices chan<- display.Notice) {
	stack, err := netlink.Up(netlink.Config{
		SSID:     ssid,
		Password: pass,
		Hostname: "pmon",
		Logger:   logger,
	})
	if err != nil {
		logger.Error("netlink:up-failed", slog.String("err", err.Error()))
		display.Send(notices, display.Notice{Code: display.MessageUplinkLost, MinDisplayMillis: 1500})
		return
	}
	logger.Info("netlink:up", slog.String("ip", stack.Addr().String()))

	c := mqtt.Client{
		ID:                "pmon",
		Logger:            logger,
		Timeout:           5 * time.Second,
		HeartbeatInterval: 30 * time.Second,
	}
	err = c.ConnectAndPublish(context.Background(), stack.Dial, broker, readings, notices)
	if err != nil {
		// Print error in a loop in case the serial monitor is not
		// ready before the inital messages
		printErrForever(logger, "connect to MQTT broker", slog.Any("reason", err))
	}
}

// printErrForever logs msg @ 1hz. It blocks forever.
func printErrForever(logger *slog.Logger, msg string, args ...any) {
	for {
		logger.Error(msg, args...)
		time.Sleep(time.Second)
	}
}
