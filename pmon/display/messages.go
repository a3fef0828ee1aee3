package display

import "strconv"

// Version is printed on the splash screen. Override at link time with
// -ldflags "-X github.com/harveysanders/pmon/pmon/display.Version=0.101".
var Version = "0.100"

// MessageCode identifies a display message.
type MessageCode uint8

// Display message codes. MessageNone means no message is active.
const (
	MessageNone MessageCode = iota
	MessageSplash
	MessageAnalysisReset
	MessageSensorError
	MessageUplinkConnected
	MessageUplinkLost
)

func (c MessageCode) String() string {
	switch c {
	case MessageNone:
		return "none"
	case MessageSplash:
		return "splash"
	case MessageAnalysisReset:
		return "analysis-reset"
	case MessageSensorError:
		return "sensor-error"
	case MessageUplinkConnected:
		return "uplink-connected"
	case MessageUplinkLost:
		return "uplink-lost"
	}
	return "message(" + strconv.Itoa(int(c)) + ")"
}

// drawMessage draws the full message screen for code. It ignores the
// stripe index and is executed once per page pass.
func (s *Screen) drawMessage(code MessageCode) {
	g := s.gfx
	g.SetFont(s.font)
	// The rounded frame is noticeably bigger in flash than a plain one.
	g.DrawRoundFrame(0, 0, Width, Height, 5)

	switch code {
	case MessageSplash:
		g.DrawString(22, 19, "Power Play")
		g.DrawString(30, 37, "UNO OLED")
		g.DrawString(27, 54, "Ver "+Version)
		return
	case MessageAnalysisReset:
		g.DrawString(27, 26, "Analysis")
		g.DrawString(27, 45, "Restarted")
		return
	case MessageSensorError:
		g.DrawString(35, 26, "Sensor")
		g.DrawString(39, 45, "Error")
		return
	case MessageUplinkConnected:
		g.DrawString(35, 26, "Uplink")
		g.DrawString(23, 45, "Connected")
		return
	case MessageUplinkLost:
		g.DrawString(35, 26, "Uplink")
		g.DrawString(43, 45, "Lost")
		return
	}

	g.DrawString(0, 30, "Message: ")
	g.DrawString(65, 30, string(appendPadded(s.text[:0], uint16(code), 4)))
}
