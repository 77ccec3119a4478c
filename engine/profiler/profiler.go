//go:build profile

package profiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Enabled reports whether scopes are recorded in this build.
const Enabled = true

// Init must be called once (e.g., on app start) with a capacity (#events).
// Example: profiler.Init(1 << 16) // ~64K scope events
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	ring.init(capacity)
}

// Start opens a scope and returns the func that closes it.
//
//	defer profiler.Start("frame")()
func Start(name string) func() {
	if !ring.ready.Load() {
		return func() {}
	}
	id := intern(name)
	open := time.Now().UnixNano()
	ring.push(event{atNS: open, frame: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < open {
			end = open
		}
		ring.push(event{atNS: end, frame: id})
	}
}

// Dump writes the recorded scopes as a speedscope document to path. An
// empty path selects a file in the temp dir. It returns the path written.
func Dump(path string) (string, error) {
	evs := ring.snapshot()
	if len(evs) == 0 {
		return "", errors.New("profiler: no events to dump")
	}
	if path == "" {
		path = filepath.Join(os.TempDir(), "canopy.frames.speedscope.json")
	}
	if err := writeSpeedscope(evs, path); err != nil {
		return "", err
	}
	return path, nil
}

// OpenGraph dumps to the temp dir and launches speedscope on the result.
func OpenGraph() (string, error) {
	path, err := Dump("")
	if err != nil {
		return "", err
	}
	cmd := exec.Command("speedscope", path)
	cmd.SysProcAttr = hideWindowAttr()
	if err := cmd.Start(); err != nil {
		return path, fmt.Errorf("launch speedscope: %w", err)
	}
	return path, nil
}

// ---------- event ring ----------

type event struct {
	atNS  int64
	frame int
	open  bool
}

type eventRing struct {
	ready atomic.Bool
	cap   uint64
	write atomic.Uint64
	evs   []event
}

func (r *eventRing) init(capacity int) {
	r.cap = uint64(capacity)
	r.evs = make([]event, r.cap)
	r.write.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.write.Add(1) - 1
	r.evs[i%r.cap] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.write.Load()
	if n == 0 {
		return nil
	}
	start := uint64(0)
	if n > r.cap {
		start = n - r.cap
	}
	out := make([]event, 0, n-start)
	for k := start; k < n; k++ {
		out = append(out, r.evs[k%r.cap])
	}
	return out
}

var ring eventRing

// ---------- scope names ----------

var (
	muNames sync.Mutex
	names   []string
	index   = map[string]int{}
)

func intern(name string) int {
	muNames.Lock()
	defer muNames.Unlock()
	if id, ok := index[name]; ok {
		return id
	}
	id := len(names)
	index[name] = id
	names = append(names, name)
	return id
}

// ---------- speedscope (evented profile) ----------

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // µs since first event
	Frame int    `json:"frame"`
}

func writeSpeedscope(evs []event, path string) error {
	muNames.Lock()
	frames := make([]ssFrame, len(names))
	for i, name := range names {
		frames[i] = ssFrame{Name: name}
	}
	muNames.Unlock()

	base := evs[0].atNS
	out := make([]ssEvent, 0, len(evs)+16)
	stack := make([]int, 0, 32)
	lastUS := int64(0)

	for _, e := range evs {
		atUS := max((e.atNS-base)/1000, lastUS)
		if e.open {
			out = append(out, ssEvent{Type: "O", At: atUS, Frame: e.frame})
			stack = append(stack, e.frame)
		} else {
			// The ring may have overwritten the matching open.
			if len(stack) == 0 || stack[len(stack)-1] != e.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: atUS, Frame: e.frame})
		}
		lastUS = atUS
	}
	// speedscope wants balanced events; close what is still open.
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: lastUS, Frame: stack[i]})
	}
	if len(out) == 0 {
		return errors.New("profiler: no usable events after filtering")
	}

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "canopy frame pump",
			Unit:     "microseconds",
			EndValue: lastUS,
			Events:   out,
		}},
		Exporter: "canopy-profiler",
		Name:     "canopy capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
