//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	procGetLastInputInfo = windows.NewLazySystemDLL("user32.dll").NewProc("GetLastInputInfo")
	procGetTickCount64   = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetTickCount64")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

type lastInputSource struct{}

func newIdleSource() IdleSource {
	if err := procGetLastInputInfo.Find(); err != nil {
		return unavailableIdle{}
	}
	if err := procGetTickCount64.Find(); err != nil {
		return unavailableIdle{}
	}
	return lastInputSource{}
}

func (lastInputSource) IdleSeconds() (uint64, bool) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	result, _, _ := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if result == 0 {
		return 0, false
	}
	ticks, _, _ := procGetTickCount64.Call()
	return idleMillisSince(uint64(ticks), info.dwTime) / 1000, true
}
