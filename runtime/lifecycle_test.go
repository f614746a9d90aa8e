package runtime

import (
	"context"
	"testing"
	"time"
)

type lifecycleWidget struct {
	children  []Widget
	mounted   int
	unmounted int
}

func (w *lifecycleWidget) Render(ctx RenderContext) {}

func (w *lifecycleWidget) ChildWidgets() []Widget {
	return w.children
}

func (w *lifecycleWidget) Mount() {
	w.mounted++
}

func (w *lifecycleWidget) Unmount() {
	w.unmounted++
}

func TestMountTree(t *testing.T) {
	child := &lifecycleWidget{}
	root := &lifecycleWidget{children: []Widget{child, nil}}

	MountTree(root)
	if root.mounted != 1 || child.mounted != 1 {
		t.Fatalf("expected mounted calls root=1 child=1, got root=%d child=%d", root.mounted, child.mounted)
	}

	UnmountTree(root)
	if root.unmounted != 1 || child.unmounted != 1 {
		t.Fatalf("expected unmounted calls root=1 child=1, got root=%d child=%d", root.unmounted, child.unmounted)
	}
}

func TestLoop_MountsRootForRun(t *testing.T) {
	child := &lifecycleWidget{}
	root := &lifecycleWidget{children: []Widget{child}}
	loop := NewLoop(LoopConfig{Root: root})

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()
	loop.Quit()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error after quit, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("loop did not quit")
	}
	if root.mounted != 1 || child.mounted != 1 {
		t.Fatalf("expected mounted once, got root=%d child=%d", root.mounted, child.mounted)
	}
	if root.unmounted != 1 || child.unmounted != 1 {
		t.Fatalf("expected unmounted once, got root=%d child=%d", root.unmounted, child.unmounted)
	}
}
