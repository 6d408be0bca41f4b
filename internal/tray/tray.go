// Package tray shows a system tray icon with a status link and an Exit
// item. Used on Windows where the bridge usually runs without a console.
package tray

import (
	"log"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// ShutdownFunc is called once when Exit is clicked.
type ShutdownFunc func()

type Tray struct {
	shutdownFunc ShutdownFunc
	statusURL    string
	once         sync.Once
	shuttingDown atomic.Bool
	menuStatus   *systray.MenuItem
	menuExit     *systray.MenuItem
}

func New(statusURL string, shutdownFn ShutdownFunc) *Tray {
	return &Tray{
		shutdownFunc: shutdownFn,
		statusURL:    statusURL,
	}
}

// Run initializes the tray and blocks until Quit.
func (t *Tray) Run(iconData []byte) {
	systray.Run(func() {
		t.onReady(iconData)
	}, func() {
		t.shuttingDown.Store(true)
	})
}

func (t *Tray) onReady(iconData []byte) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("joy2crsf")
	systray.SetTooltip("joy2crsf - joystick to CRSF bridge")

	if t.statusURL != "" {
		t.menuStatus = systray.AddMenuItem("Open Status Page", "Open the channel status page")
	}
	t.menuExit = systray.AddMenuItem("Exit", "Stop the bridge")

	go t.handleMenuClicks()

	log.Println("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	var statusCh chan struct{}
	if t.menuStatus != nil {
		statusCh = t.menuStatus.ClickedCh
	}

	for {
		select {
		case <-statusCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.once.Do(t.shutdownFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.statusURL)
	case "darwin":
		cmd = exec.Command("open", t.statusURL)
	default:
		cmd = exec.Command("xdg-open", t.statusURL)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("failed to open browser: %v", err)
	}
}
