package testutil

import (
	"sync"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/udisondev/rogue2d/internal/game/fx"
	"github.com/udisondev/rogue2d/internal/game/geom"
)

// Recorder — in-memory реализация fx.Layer и fx.Numbers для unit тестов.
// Запоминает все вызовы косметического слоя.
type Recorder struct {
	mu sync.Mutex

	Spawned  []fx.Handle
	Released []fx.Handle
	OneShots []string
	Tints    []colorful.Color
	Alphas   []float64
	Speeds   []float64
	Numbers  []float64
}

// NewRecorder создаёт пустой Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SpawnEffect(owner uuid.UUID, effect string) fx.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := fx.Handle{ID: uuid.New(), Owner: owner, Effect: effect}
	r.Spawned = append(r.Spawned, h)
	return h
}

func (r *Recorder) ReleaseEffect(h fx.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Released = append(r.Released, h)
}

func (r *Recorder) PlayOneShot(_ uuid.UUID, effect string, _ geom.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.OneShots = append(r.OneShots, effect)
}

func (r *Recorder) SetTint(_ uuid.UUID, c colorful.Color, alpha float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tints = append(r.Tints, c)
	r.Alphas = append(r.Alphas, alpha)
}

func (r *Recorder) SetAnimationSpeed(_ uuid.UUID, speed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Speeds = append(r.Speeds, speed)
}

func (r *Recorder) FloatingText(_ uuid.UUID, value float64, _ geom.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Numbers = append(r.Numbers, value)
}

// ReleaseCount возвращает количество вызовов ReleaseEffect.
func (r *Recorder) ReleaseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Released)
}

// SpawnCount возвращает количество вызовов SpawnEffect.
func (r *Recorder) SpawnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Spawned)
}

// NumberCount возвращает количество показанных чисел урона.
func (r *Recorder) NumberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Numbers)
}

// CountOneShots возвращает сколько раз был проигран эффект name.
func (r *Recorder) CountOneShots(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.OneShots {
		if s == name {
			n++
		}
	}
	return n
}

// LastAlpha возвращает последнюю переданную прозрачность спрайта.
func (r *Recorder) LastAlpha() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Alphas) == 0 {
		return 1
	}
	return r.Alphas[len(r.Alphas)-1]
}

// FixedRoller возвращает заранее заданные значения броска по очереди.
// После исчерпания списка повторяет последнее значение.
type FixedRoller struct {
	mu     sync.Mutex
	values []float64
	calls  int
}

// Rolls создаёт FixedRoller с указанными значениями.
func Rolls(values ...float64) *FixedRoller {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &FixedRoller{values: values}
}

func (r *FixedRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := min(r.calls, len(r.values)-1)
	r.calls++
	return r.values[i]
}

// Calls возвращает количество сделанных бросков.
func (r *FixedRoller) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// FixedScalers — глобальные множители с постоянными значениями.
type FixedScalers struct {
	Curse float64
	Level float64
}

func (s FixedScalers) CumulativeCurse() float64 { return max(1, s.Curse) }
func (s FixedScalers) CumulativeLevel() float64 { return max(1, s.Level) }
