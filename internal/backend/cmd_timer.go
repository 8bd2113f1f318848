package backend

import (
	"fmt"
	"time"

	"github.com/1broseidon/splbe/internal/protocol"
	"github.com/1broseidon/splbe/internal/sound"
	"github.com/1broseidon/splbe/internal/timer"
)

func timerCreate(c *call) (string, error) {
	id, msec := c.String(), c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	b := c.b
	return "", c.do(func() error {
		if old, ok := b.reg.Timer(id); ok {
			if b.opts.DuplicateIDs == DuplicateReject {
				return fmt.Errorf("timer %q already exists", id)
			}
			old.Stop()
		}
		period := time.Duration(msec * float64(time.Millisecond))
		b.reg.DefineTimer(id, timer.New(id, period, b.tick, b.logger))
		return nil
	})
}

// tick turns a timer firing into a timerTicked event, unless the timer was
// stopped or replaced in the meantime.
func (b *Backend) tick(id string) {
	err := b.ui.Post(func() {
		t, ok := b.reg.Timer(id)
		if !ok || !t.Running() {
			return
		}
		b.emit(protocol.Event{Type: protocol.TimerTicked, Source: id, Time: protocol.Now()})
	})
	if err != nil {
		b.logger.Debug("timer tick dropped", "timer", id, "error", err)
	}
}

// onTimer posts fn against a registered timer.
func onTimer(c *call, fn func(t *timer.Timer)) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	return "", c.do(func() error {
		t, ok := c.b.reg.Timer(id)
		if !ok {
			return protocol.NotFound("timer", id)
		}
		fn(t)
		return nil
	})
}

func timerStart(c *call) (string, error) { return onTimer(c, (*timer.Timer).Start) }
func timerStop(c *call) (string, error) { return onTimer(c, (*timer.Timer).Stop) }

func timerDelete(c *call) (string, error) {
	return onTimer(c, func(t *timer.Timer) {
		t.Stop()
		c.b.reg.DeleteTimer(t.ID())
	})
}

// timerPause holds up command processing for msec milliseconds.
func timerPause(c *call) (string, error) {
	msec := c.Float()
	if err := c.End(); err != nil {
		return "", err
	}
	t := time.NewTimer(time.Duration(msec * float64(time.Millisecond)))
	defer t.Stop()
	select {
	case <-t.C:
	case <-c.b.ctx.Done():
	}
	return "", nil
}

// nextEvent writes the oldest queued event matching the mask, if any. The
// reply line follows it.
func nextEvent(c *call) (string, error) {
	mask := c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	if c.b.events == nil {
		return "", nil
	}
	if ev, ok := c.b.events.Next(mask); ok {
		c.b.write(c.b.out.Event(ev))
	}
	return "", nil
}

// waitForEvent blocks until an event matching the mask is queued.
func waitForEvent(c *call) (string, error) {
	mask := c.Int()
	if err := c.End(); err != nil {
		return "", err
	}
	if c.b.events == nil {
		return "", nil
	}
	ev, err := c.b.events.Wait(c.b.ctx, mask)
	if err != nil {
		return "", err
	}
	c.b.write(c.b.out.Event(ev))
	return "", nil
}

func soundCreate(c *call) (string, error) {
	id, file := c.String(), c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	s, err := sound.Load(id, file, c.b.opts.ImagePaths)
	if err != nil {
		return "", protocol.Native(err)
	}
	if _, ok := c.b.reg.Sound(id); ok && c.b.opts.DuplicateIDs == DuplicateReject {
		return "", fmt.Errorf("sound %q already exists", id)
	}
	c.b.reg.DefineSound(id, s)
	return "", nil
}

func soundDelete(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	if _, ok := c.b.reg.DeleteSound(id); !ok {
		return "", protocol.NotFound("sound", id)
	}
	return "", nil
}

func soundPlay(c *call) (string, error) {
	id := c.String()
	if err := c.End(); err != nil {
		return "", err
	}
	s, ok := c.b.reg.Sound(id)
	if !ok {
		return "", protocol.NotFound("sound", id)
	}
	return "", protocol.Native(c.b.opts.Player.Play(s.Path))
}
