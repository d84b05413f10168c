package core

import "github.com/spaghettifunk/anima-g3d/engine/containers"

// AVG_COUNT is the number of frames the frame time is averaged over.
const AVG_COUNT = 30

// Metrics keeps a rolling frame time average and a frames-per-second count.
type Metrics struct {
	msTimes            *containers.RingQueue[float64]
	msSum              float64
	frames             int
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewMetrics() *Metrics {
	return &Metrics{msTimes: containers.NewRingQueue[float64](AVG_COUNT)}
}

// Update records one frame that took frameSeconds.
func (m *Metrics) Update(frameSeconds float64) {
	frameMS := frameSeconds * 1000.0
	if m.msTimes.IsFull() {
		oldest, _ := m.msTimes.Dequeue()
		m.msSum -= oldest
	}
	m.msTimes.Enqueue(frameMS)
	m.msSum += frameMS

	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	m.frames++
	m.totalFrames++
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average frame time in milliseconds over the last AVG_COUNT frames.
func (m *Metrics) FrameTime() float64 {
	if m.msTimes.IsEmpty() {
		return 0
	}
	return m.msSum / float64(m.msTimes.Len())
}

func (m *Metrics) TotalFrames() uint64 {
	return m.totalFrames
}
