package display

import "log/slog"

// Notice asks the control loop to show a display message.
//
// Goroutines other than the control loop never touch a Screen. They send
// notices instead, and the control loop applies them with Drain:
//
//	notices := make(chan display.Notice, 4)
//	go uplink(notices)
//
//	for {
//		screen.Drain(notices)
//		screen.RenderGraphPage(current, average)
//	}
type Notice struct {
	Code             MessageCode
	MinDisplayMillis uint16
}

// Send queues n without blocking. It reports false when the channel is
// full and the notice was dropped.
func Send(notices chan<- Notice, n Notice) bool {
	select {
	case notices <- n:
		return true
	default:
		return false
	}
}

// Drain activates every queued notice in order and returns how many it
// applied. It does not block and stops at a closed channel.
func (s *Screen) Drain(notices <-chan Notice) int {
	applied := 0
	for {
		select {
		case n, ok := <-notices:
			if !ok {
				return applied
			}
			s.logger.Debug("display:notice", slog.String("code", n.Code.String()))
			s.ActivateMessage(n.Code, n.MinDisplayMillis)
			applied++
		default:
			return applied
		}
	}
}
