package core

// Layer is a self-contained slice of UI (a panel, an overlay) stacked on
// top of the App. Layers build widgets in push order and see native events
// top-down.
type Layer interface {
	OnAttach(e *Engine)
	OnDetach(e *Engine)
	OnUI(e *Engine, f *Frame)
	OnEvent(e *Engine, ev Event) bool // return true if handled; propagation to lower layers stops
}

type LayerStack struct{ list []Layer }

func (ls *LayerStack) Push(l Layer) { ls.list = append(ls.list, l) }
func (ls *LayerStack) Pop() (Layer, bool) {
	if len(ls.list) == 0 {
		return nil, false
	}
	i := len(ls.list) - 1
	l := ls.list[i]
	ls.list = ls.list[:i]
	return l, true
}

func (ls *LayerStack) Len() int { return len(ls.list) }

func (ls *LayerStack) ForEach(f func(Layer)) {
	for _, l := range ls.list {
		f(l)
	}
}

func (ls *LayerStack) ForEachReverse(f func(Layer) bool) {
	for i := len(ls.list) - 1; i >= 0; i-- {
		if stop := f(ls.list[i]); stop {
			break
		}
	}
}

// PushLayer attaches l and puts it on top of the stack.
func (e *Engine) PushLayer(l Layer) {
	l.OnAttach(e)
	e.Layers.Push(l)
}

// popAll detaches every layer, topmost first.
func (e *Engine) popAll() {
	for {
		l, ok := e.Layers.Pop()
		if !ok {
			return
		}
		l.OnDetach(e)
	}
}
