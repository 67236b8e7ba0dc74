//go:build windows

package event

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
)

const (
	wmDeviceChange  = 0x0219
	windowClassName = "MonitorSwitcherDeviceWatcher"
)

var (
	registerOnce sync.Once
	registerErr  error

	// The window procedure is a process-wide callback, so the handler of
	// the running source is published here.
	handlerMu     sync.Mutex
	activeHandler Handler

	wndProcCallback = syscall.NewCallback(wndProc)
)

// WindowSource receives WM_DEVICECHANGE broadcasts on a hidden top-level window.
// Message-only windows do not receive broadcasts, so the window is a normal,
// never-shown one.
type WindowSource struct{}

// NewWindowSource returns the Win32 message-loop source.
func NewWindowSource() *WindowSource {
	return &WindowSource{}
}

func (s *WindowSource) Run(ctx context.Context, h Handler) error {
	// Window messages are delivered to the thread that created the window.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	instance := win.GetModuleHandle(nil)
	className, err := syscall.UTF16PtrFromString(windowClassName)
	if err != nil {
		return err
	}

	registerOnce.Do(func() {
		wc := win.WNDCLASSEX{
			LpfnWndProc:   wndProcCallback,
			HInstance:     instance,
			LpszClassName: className,
		}
		wc.CbSize = uint32(unsafe.Sizeof(wc))
		if win.RegisterClassEx(&wc) == 0 {
			registerErr = fmt.Errorf("register window class: error %d", win.GetLastError())
		}
	})
	if registerErr != nil {
		return registerErr
	}

	handlerMu.Lock()
	activeHandler = h
	handlerMu.Unlock()
	defer func() {
		handlerMu.Lock()
		activeHandler = nil
		handlerMu.Unlock()
	}()

	hwnd := win.CreateWindowEx(0, className, nil, 0, 0, 0, 0, 0, 0, 0, instance, nil)
	if hwnd == 0 {
		return fmt.Errorf("create window: error %d", win.GetLastError())
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
		case <-stop:
		}
	}()

	var msg win.MSG
	for {
		switch win.GetMessage(&msg, 0, 0, 0) {
		case 0:
			// WM_QUIT
			return nil
		case -1:
			return fmt.Errorf("get message: error %d", win.GetLastError())
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmDeviceChange:
		handlerMu.Lock()
		h := activeHandler
		handlerMu.Unlock()
		if h != nil {
			h(Signal{Code: Code(wParam), At: time.Now()})
		}
		return 1
	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0
	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// New returns the native source for this platform, or a polling source
// when opts asks for one.
func New(opts Options) Source {
	if opts.PollInterval > 0 {
		return NewPollSource(opts.PollInterval, opts.Fingerprint, opts.OnError)
	}
	return NewWindowSource()
}
