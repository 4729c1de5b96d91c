package tone

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// drainPoll is how often a pulse goroutine checks whether its player finished.
const drainPoll = 2 * time.Millisecond

// oto allows a single context per process; every emitter shares it.
var (
	contextOnce sync.Once
	contextErr  error
	sharedCtx   *oto.Context
	sharedRate  int
)

func audioContext(sampleRate int) (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("cannot create oto context: %w", err)
			return
		}
		<-ready
		sharedCtx = ctx
		sharedRate = sampleRate
	})
	if contextErr != nil {
		return nil, contextErr
	}
	if sharedRate != sampleRate {
		return nil, fmt.Errorf("oto context already running at %d Hz, requested %d Hz", sharedRate, sampleRate)
	}
	return sharedCtx, nil
}

// OtoEmitter plays pulses on the default audio device. The audio context is
// acquired once and kept; each pulse gets its own player, released as soon
// as the pulse has drained.
type OtoEmitter struct {
	ctx    *oto.Context
	osc    Oscillator
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// NewOtoEmitter opens the audio device. It fails when no device is available;
// callers are expected to fall back to NopEmitter.
func NewOtoEmitter(osc Oscillator) (*OtoEmitter, error) {
	ctx, err := audioContext(osc.SampleRate)
	if err != nil {
		return nil, err
	}
	if err := ctx.Resume(); err != nil {
		return nil, fmt.Errorf("cannot resume oto context: %w", err)
	}
	return &OtoEmitter{ctx: ctx, osc: osc}, nil
}

// Emit starts one pulse and returns immediately.
func (e *OtoEmitter) Emit(p Params) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	pcm := EncodeInt16LE(e.osc.Render(p), nil)
	player := e.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	go func() {
		defer e.wg.Done()
		for player.IsPlaying() {
			time.Sleep(drainPoll)
		}
		player.Close()
	}()
}

// Close stops accepting pulses, waits for the ones in flight and
// suspends the shared context.
func (e *OtoEmitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()

	if err := e.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}
